package sheet

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned when a sheet title does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Properties describes one sheet of a workbook.
type Properties struct {
	Title       string `json:"title"`
	ID          int64  `json:"id"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

// Backend is the tabular store. Implementations return only non-empty
// cells from Load. Write treats an empty Cell as a clear.
type Backend interface {
	Properties(ctx context.Context, title string) (Properties, error)
	Load(ctx context.Context, title string, r GridRange) (map[Pos]Cell, error)
	Write(ctx context.Context, title string, updates []CellUpdate) error
	Resize(ctx context.Context, title string, rows int) error
	InsertColumn(ctx context.Context, title string, index int) error
	CopyColumn(ctx context.Context, title string, from, to int) error
}

// Creator is implemented by backends that can add sheets, used to
// bootstrap a local workbook.
type Creator interface {
	CreateSheet(ctx context.Context, title string, rows, cols int) error
}
