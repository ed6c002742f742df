package sheet

import (
	"context"
	"fmt"
	"sort"
)

// Sheet is a loaded view of one sheet with staged, uncommitted changes.
// It is not safe for concurrent use.
type Sheet struct {
	backend Backend
	props   Properties

	cells   map[Pos]Cell
	loaded  []GridRange
	pending map[Pos]Cell

	rowCount int // including staged appends
}

// Open reads the properties of title. No cells are loaded yet.
func Open(ctx context.Context, b Backend, title string) (*Sheet, error) {
	props, err := b.Properties(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("opening sheet %q: %w", title, err)
	}
	return &Sheet{
		backend:  b,
		props:    props,
		cells:    make(map[Pos]Cell),
		pending:  make(map[Pos]Cell),
		rowCount: props.RowCount,
	}, nil
}

// Title returns the sheet title.
func (s *Sheet) Title() string { return s.props.Title }

// RowCount returns the declared row count including staged appends.
func (s *Sheet) RowCount() int { return s.rowCount }

// Load fetches r into the cache. Staged changes inside r are kept.
func (s *Sheet) Load(ctx context.Context, r GridRange) error {
	cells, err := s.backend.Load(ctx, s.props.Title, r)
	if err != nil {
		return fmt.Errorf("loading %s: %w", FormatA1(s.props.Title, r), err)
	}
	for p := range s.cells {
		if r.Contains(p) {
			delete(s.cells, p)
		}
	}
	for p, c := range cells {
		s.cells[p] = c
	}
	s.loaded = append(s.loaded, r)
	return nil
}

// LoadA1 loads a range given in A1 notation.
func (s *Sheet) LoadA1(ctx context.Context, a1 string) error {
	r, err := ParseA1(a1)
	if err != nil {
		return err
	}
	return s.Load(ctx, r)
}

// LoadTail loads the last n rows across every column and returns the
// first loaded row index.
func (s *Sheet) LoadTail(ctx context.Context, n int) (int, error) {
	start := s.rowCount - n
	if start < 0 {
		start = 0
	}
	if err := s.Load(ctx, Rows(start, s.rowCount)); err != nil {
		return 0, err
	}
	return start, nil
}

// Reload discards the cache and reloads every range loaded so far. Staged
// changes are kept.
func (s *Sheet) Reload(ctx context.Context) error {
	props, err := s.backend.Properties(ctx, s.props.Title)
	if err != nil {
		return fmt.Errorf("reloading sheet %q: %w", s.props.Title, err)
	}
	s.props = props
	if s.rowCount < props.RowCount {
		s.rowCount = props.RowCount
	}

	ranges := s.loaded
	s.loaded = nil
	s.cells = make(map[Pos]Cell)
	for _, r := range ranges {
		if err := s.Load(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Loaded reports whether (row, col) lies in a loaded range or is staged.
func (s *Sheet) Loaded(row, col int) bool {
	p := Pos{Row: row, Col: col}
	if _, ok := s.pending[p]; ok {
		return true
	}
	if row >= s.props.RowCount && row < s.rowCount {
		return true // appended rows start empty
	}
	for _, r := range s.loaded {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// Cell returns the current content of (row, col), staged changes included.
func (s *Sheet) Cell(row, col int) Cell {
	p := Pos{Row: row, Col: col}
	if c, ok := s.pending[p]; ok {
		return c
	}
	return s.cells[p]
}

// CellA1 returns the cell at an A1 reference.
func (s *Sheet) CellA1(ref string) (Cell, error) {
	p, err := ParseCell(ref)
	if err != nil {
		return Cell{}, err
	}
	return s.Cell(p.Row, p.Col), nil
}

// Set stages c at (row, col) unless the cell already holds the same value.
// It reports whether anything was staged.
func (s *Sheet) Set(row, col int, c Cell) bool {
	if s.Cell(row, col).SameValue(c) {
		return false
	}
	s.pending[Pos{Row: row, Col: col}] = c
	return true
}

// SetA1 is Set addressed by an A1 reference.
func (s *Sheet) SetA1(ref string, c Cell) (bool, error) {
	p, err := ParseCell(ref)
	if err != nil {
		return false, err
	}
	return s.Set(p.Row, p.Col, c), nil
}

// AppendRow stages one more row and returns its index.
func (s *Sheet) AppendRow() int {
	row := s.rowCount
	s.rowCount++
	return row
}

// Dirty reports whether there is anything to save.
func (s *Sheet) Dirty() bool {
	return len(s.pending) > 0 || s.rowCount != s.props.RowCount
}

// Pending returns the staged writes ordered by row then column.
func (s *Sheet) Pending() []CellUpdate {
	out := make([]CellUpdate, 0, len(s.pending))
	for p, c := range s.pending {
		out = append(out, CellUpdate{Pos: p, Cell: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Discard drops every staged change.
func (s *Sheet) Discard() {
	s.pending = make(map[Pos]Cell)
	s.rowCount = s.props.RowCount
}

// Save commits staged changes: the row count first, then cell writes.
// Nothing is sent when there are no changes.
func (s *Sheet) Save(ctx context.Context) error {
	title := s.props.Title
	if s.rowCount > s.props.RowCount {
		if err := s.backend.Resize(ctx, title, s.rowCount); err != nil {
			return fmt.Errorf("resizing %q to %d rows: %w", title, s.rowCount, err)
		}
		s.props.RowCount = s.rowCount
	}

	if len(s.pending) == 0 {
		return nil
	}
	updates := s.Pending()
	if err := s.backend.Write(ctx, title, updates); err != nil {
		return fmt.Errorf("writing %d cells to %q: %w", len(updates), title, err)
	}
	for _, u := range updates {
		s.cells[u.Pos] = u.Cell
	}
	s.pending = make(map[Pos]Cell)
	return nil
}

// InsertColumn inserts an empty column at index, shifting later columns
// right, and reloads the cache. It is applied to the store immediately and
// requires no staged cell changes.
func (s *Sheet) InsertColumn(ctx context.Context, index int) error {
	if len(s.pending) > 0 {
		return fmt.Errorf("insert column on %q with %d staged changes", s.props.Title, len(s.pending))
	}
	if err := s.backend.InsertColumn(ctx, s.props.Title, index); err != nil {
		return fmt.Errorf("inserting column %d in %q: %w", index, s.props.Title, err)
	}
	return s.Reload(ctx)
}

// CopyColumn copies every cell of column from into column to and reloads
// the cache. Like InsertColumn it is applied immediately.
func (s *Sheet) CopyColumn(ctx context.Context, from, to int) error {
	if len(s.pending) > 0 {
		return fmt.Errorf("copy column on %q with %d staged changes", s.props.Title, len(s.pending))
	}
	if err := s.backend.CopyColumn(ctx, s.props.Title, from, to); err != nil {
		return fmt.Errorf("copying column %d to %d in %q: %w", from, to, s.props.Title, err)
	}
	return s.Reload(ctx)
}
