// Package summarysheet writes the daily nationwide summary into the NHK
// sheet. Column H holds the newest day; older days shift right.
package summarysheet

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

const (
	Title = "NHK"

	// StatusOK is returned after a successful write.
	StatusOK = "OK"

	// LatestCol is column H, the most recent day.
	LatestCol = 7
	// HistoryCol receives a copy of the previous day when a newer date is
	// written.
	HistoryCol = 8

	DateRow         = 0 // H1
	LinkRow         = 1 // H2
	FirstCountRow   = 3 // prefecture counts in Names order
	FirstOtherRow   = 50
	OtherCountCount = 5

	dataRange = "H1:H59"
	todayCell = "A2"
)

// LinkFormula returns the formula written under the date.
func LinkFormula(url string) string {
	return fmt.Sprintf(`=HYPERLINK("%s", "Link")`, url)
}

// Write records counts (47 values in prefecture.Names order) and other
// (port quarantine, critical, deceased, recovered in Japan, recovered
// total) for date. A date newer than H1 first preserves the current column
// as history. Cells already holding the right value are not rewritten.
func Write(ctx context.Context, b sheet.Backend, date, url string, counts, other []int) (string, error) {
	if len(counts) != prefecture.Count {
		return "", fmt.Errorf("got %d prefecture counts, want %d", len(counts), prefecture.Count)
	}
	if len(other) != OtherCountCount {
		return "", fmt.Errorf("got %d other counts, want %d", len(other), OtherCountCount)
	}
	serial, err := sheet.SerialDate(date)
	if err != nil {
		return "", err
	}

	s, err := sheet.Open(ctx, b, Title)
	if err != nil {
		return "", err
	}
	if err := s.LoadA1(ctx, dataRange); err != nil {
		return "", err
	}
	if err := s.LoadA1(ctx, todayCell); err != nil {
		return "", err
	}

	current, _ := s.Cell(DateRow, LatestCol).Int()
	if serial > current {
		if err := s.InsertColumn(ctx, HistoryCol); err != nil {
			return "", err
		}
		if err := s.CopyColumn(ctx, LatestCol, HistoryCol); err != nil {
			return "", err
		}
	}

	s.Set(DateRow, LatestCol, sheet.IntCell(serial))
	s.Set(LinkRow, LatestCol, sheet.FormulaCell(LinkFormula(url)))
	for i, n := range counts {
		s.Set(FirstCountRow+i, LatestCol, sheet.IntCell(n))
	}
	for i, n := range other {
		s.Set(FirstOtherRow+i, LatestCol, sheet.IntCell(n))
	}
	if _, err := s.SetA1(todayCell, sheet.IntCell(serial)); err != nil {
		return "", err
	}

	if err := s.Save(ctx); err != nil {
		return "", err
	}
	return StatusOK, nil
}
