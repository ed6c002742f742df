package sheet

import (
	"math"
	"strconv"
)

// Kind is the type of a cell's effective value.
type Kind uint8

const (
	Empty Kind = iota
	Number
	String
	Bool
)

// Cell is the content of one spreadsheet cell.
type Cell struct {
	Kind      Kind    `json:"kind"`
	Number    float64 `json:"number,omitempty"`
	Text      string  `json:"text,omitempty"`
	Bool      bool    `json:"bool,omitempty"`
	Formula   string  `json:"formula,omitempty"`
	Formatted string  `json:"formatted,omitempty"` // display value as rendered by the store
}

// Pos addresses a cell.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellUpdate is one staged cell write.
type CellUpdate struct {
	Pos
	Cell Cell `json:"cell"`
}

// NumberCell returns a numeric cell.
func NumberCell(n float64) Cell {
	return Cell{Kind: Number, Number: n, Formatted: formatNumber(n)}
}

// IntCell returns a numeric cell holding n.
func IntCell(n int) Cell {
	return NumberCell(float64(n))
}

// StringCell returns a text cell; an empty string yields an empty cell.
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: String, Text: s, Formatted: s}
}

// FormulaCell returns a cell holding formula. Its effective value is left
// to the store.
func FormulaCell(formula string) Cell {
	return Cell{Formula: formula}
}

// IsEmpty reports whether the cell has neither a value nor a formula.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty && c.Formula == ""
}

// Int returns the cell's numeric value truncated to an int.
func (c Cell) Int() (int, bool) {
	if c.Kind != Number {
		return 0, false
	}
	return int(c.Number), true
}

// String returns the display value, falling back to the raw value when the
// store did not supply one.
func (c Cell) String() string {
	if c.Formatted != "" {
		return c.Formatted
	}
	switch c.Kind {
	case Number:
		return formatNumber(c.Number)
	case String:
		return c.Text
	case Bool:
		return strconv.FormatBool(c.Bool)
	}
	return ""
}

// SameValue reports whether writing c over o would change anything. The
// formatted value is ignored since the store derives it.
func (c Cell) SameValue(o Cell) bool {
	if c.Formula != "" || o.Formula != "" {
		return c.Formula == o.Formula
	}
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case Number:
		return c.Number == o.Number
	case String:
		return c.Text == o.Text
	case Bool:
		return c.Bool == o.Bool
	}
	return true
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
