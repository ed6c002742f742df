package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

// GridRange is a half-open rectangle of cells. EndCol 0 means every column.
type GridRange struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

// Contains reports whether p lies inside r.
func (r GridRange) Contains(p Pos) bool {
	if p.Row < r.StartRow || p.Row >= r.EndRow {
		return false
	}
	if p.Col < r.StartCol {
		return false
	}
	return r.EndCol == 0 || p.Col < r.EndCol
}

// Rows returns the range covering rows [start, end) across every column.
func Rows(start, end int) GridRange {
	if start < 0 {
		start = 0
	}
	return GridRange{StartRow: start, EndRow: end}
}

// ColumnIndex converts a column name (A, H, AA) to a 0-based index.
func ColumnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	idx := 0
	for _, r := range strings.ToUpper(name) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1, nil
}

// ColumnName converts a 0-based column index to its name.
func ColumnName(idx int) string {
	name := ""
	for idx >= 0 {
		name = string(rune('A'+idx%26)) + name
		idx = idx/26 - 1
	}
	return name
}

// ParseCell parses a single A1 reference such as "H1".
func ParseCell(ref string) (Pos, error) {
	ref = strings.TrimSpace(ref)
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 || i == len(ref) {
		return Pos{}, fmt.Errorf("invalid cell reference %q", ref)
	}
	col, err := ColumnIndex(ref[:i])
	if err != nil {
		return Pos{}, err
	}
	row, err := strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return Pos{}, fmt.Errorf("invalid row in cell reference %q", ref)
	}
	return Pos{Row: row - 1, Col: col}, nil
}

// ParseA1 parses "H1" or "A1:O50" into a range.
func ParseA1(a1 string) (GridRange, error) {
	from, to, found := strings.Cut(a1, ":")
	start, err := ParseCell(from)
	if err != nil {
		return GridRange{}, err
	}
	end := start
	if found {
		if end, err = ParseCell(to); err != nil {
			return GridRange{}, err
		}
	}
	if end.Row < start.Row || end.Col < start.Col {
		return GridRange{}, fmt.Errorf("inverted range %q", a1)
	}
	return GridRange{
		StartRow: start.Row,
		EndRow:   end.Row + 1,
		StartCol: start.Col,
		EndCol:   end.Col + 1,
	}, nil
}

// FormatA1 renders r in A1 notation qualified by the sheet title, e.g.
// 'Patient Data'!A10:N20 or 'Patient Data'!10:20 for whole rows.
func FormatA1(title string, r GridRange) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if r.EndCol == 0 {
		return fmt.Sprintf("%s!%d:%d", quoted, r.StartRow+1, r.EndRow)
	}
	return fmt.Sprintf("%s!%s%d:%s%d", quoted,
		ColumnName(r.StartCol), r.StartRow+1,
		ColumnName(r.EndCol-1), r.EndRow)
}
