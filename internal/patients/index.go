package patients

import (
	"fmt"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

// Index locates rows in the loaded window of one sheet. It is built once
// and kept current as rows are claimed.
type Index struct {
	sheet *sheet.Sheet
	rows  map[Key]int
	holes []int
}

// NewIndex indexes rows [start, RowCount) of s. The window must already
// be loaded.
func NewIndex(s *sheet.Sheet, start int) *Index {
	idx := &Index{sheet: s, rows: make(map[Key]int)}
	for row := start; row < s.RowCount(); row++ {
		if !s.Loaded(row, ColID) {
			continue
		}
		if s.Cell(row, ColID).IsEmpty() {
			idx.holes = append(idx.holes, row)
		}
		name := s.Cell(row, ColPrefecture).String()
		if name == "" {
			continue
		}
		var deceased bool
		switch s.Cell(row, ColStatus).String() {
		case "":
		case StatusDeceased:
			deceased = true
		default:
			// Individual patient rows are never aggregate rows.
			continue
		}
		for _, date := range rowDates(s.Cell(row, ColDateAnnounced)) {
			k := Key{Prefecture: name, Date: date, Deceased: deceased}
			if _, ok := idx.rows[k]; !ok {
				idx.rows[k] = row
			}
		}
	}
	return idx
}

// rowDates returns the dates a date cell matches: its display value and,
// for numeric cells, the date of its serial value.
func rowDates(c sheet.Cell) []string {
	var out []string
	if f := c.String(); f != "" {
		out = append(out, f)
	}
	if n, ok := c.Int(); ok {
		if d := sheet.DateFromSerial(n); d != c.String() {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the row holding k.
func (idx *Index) Lookup(k Key) (int, bool) {
	row, ok := idx.rows[k]
	return row, ok
}

// FindOrUpdate stages obs into the row for k and reports the row and
// whether anything changed. A found row gets its count and source
// refreshed. A new row takes the first hole, or is appended, and has every
// fixed column written.
func (idx *Index) FindOrUpdate(k Key, obs article.Observation) (int, bool, error) {
	if row, ok := idx.rows[k]; ok {
		changed := idx.sheet.Set(row, ColCount, sheet.IntCell(obs.Count))
		if obs.Source != "" && idx.sheet.Set(row, ColSource, sheet.StringCell(obs.Source)) {
			changed = true
		}
		return row, changed, nil
	}

	serial, err := sheet.SerialDate(k.Date)
	if err != nil {
		return 0, false, fmt.Errorf("row date for %s: %w", k.Prefecture, err)
	}

	var row int
	if len(idx.holes) > 0 {
		row, idx.holes = idx.holes[0], idx.holes[1:]
		// A hole may still carry another key's prefecture and date.
		for other, r := range idx.rows {
			if r == row {
				delete(idx.rows, other)
			}
		}
	} else {
		row = idx.sheet.AppendRow()
	}

	s := idx.sheet
	s.Set(row, ColID, sheet.StringCell(k.RowID()))
	s.Set(row, ColPrefecture, sheet.StringCell(k.Prefecture))
	s.Set(row, ColDateAdded, sheet.IntCell(serial))
	s.Set(row, ColDateAnnounced, sheet.IntCell(serial))
	s.Set(row, ColStatus, sheet.StringCell(k.Status()))
	s.Set(row, ColCount, sheet.IntCell(obs.Count))
	s.Set(row, ColSource, sheet.StringCell(obs.Source))
	idx.rows[k] = row
	return row, true, nil
}
