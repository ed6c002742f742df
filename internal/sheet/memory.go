package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Backend. It is used by tests and by dry runs
// with no external store.
type Memory struct {
	mu     sync.Mutex
	sheets map[string]*memorySheet
	nextID int64
	calls  map[string]int
}

type memorySheet struct {
	props    Properties
	cells    map[Pos]Cell
	dateCols map[int]bool
}

// NewMemory returns an empty workbook.
func NewMemory() *Memory {
	return &Memory{
		sheets: make(map[string]*memorySheet),
		calls:  make(map[string]int),
	}
}

// CreateSheet adds a sheet with the given grid size.
func (m *Memory) CreateSheet(_ context.Context, title string, rows, cols int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[title]; ok {
		return fmt.Errorf("sheet %q already exists", title)
	}
	m.nextID++
	m.sheets[title] = &memorySheet{
		props:    Properties{Title: title, ID: m.nextID, RowCount: rows, ColumnCount: cols},
		cells:    make(map[Pos]Cell),
		dateCols: make(map[int]bool),
	}
	return nil
}

// SetDateColumn makes numeric cells in col render as YYYY-MM-DD, the way
// a date-formatted column does in a real spreadsheet.
func (m *Memory) SetDateColumn(title string, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sheets[title]; ok {
		s.dateCols[col] = true
	}
}

// Put stores a cell directly, bypassing call accounting. Used to seed data.
func (m *Memory) Put(title string, row, col int, c Cell) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sheets[title]; ok {
		s.put(Pos{Row: row, Col: col}, c)
	}
}

// Get returns a stored cell.
func (m *Memory) Get(title string, row, col int) Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sheets[title]; ok {
		return s.cells[Pos{Row: row, Col: col}]
	}
	return Cell{}
}

// Calls returns how many times op ("write", "resize", "insert", "copy",
// "load") was invoked on title.
func (m *Memory) Calls(title, op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[title+"/"+op]
}

func (m *Memory) sheet(title, op string) (*memorySheet, error) {
	s, ok := m.sheets[title]
	if !ok {
		return nil, fmt.Errorf("%q: %w", title, ErrSheetNotFound)
	}
	m.calls[title+"/"+op]++
	return s, nil
}

func (s *memorySheet) put(p Pos, c Cell) {
	if c.IsEmpty() {
		delete(s.cells, p)
		return
	}
	if c.Kind == Number && s.dateCols[p.Col] {
		c.Formatted = DateFromSerial(int(c.Number))
	} else if c.Formatted == "" {
		c.Formatted = c.String()
	}
	s.cells[p] = c
}

// Properties implements Backend.
func (m *Memory) Properties(_ context.Context, title string) (Properties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "properties")
	if err != nil {
		return Properties{}, err
	}
	return s.props, nil
}

// Load implements Backend.
func (m *Memory) Load(_ context.Context, title string, r GridRange) (map[Pos]Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "load")
	if err != nil {
		return nil, err
	}
	out := make(map[Pos]Cell)
	for p, c := range s.cells {
		if r.Contains(p) {
			out[p] = c
		}
	}
	return out, nil
}

// Write implements Backend.
func (m *Memory) Write(_ context.Context, title string, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "write")
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.Row >= s.props.RowCount {
			return fmt.Errorf("row %d outside grid of %d rows", u.Row, s.props.RowCount)
		}
		s.put(u.Pos, u.Cell)
	}
	return nil
}

// Resize implements Backend.
func (m *Memory) Resize(_ context.Context, title string, rows int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "resize")
	if err != nil {
		return err
	}
	for p := range s.cells {
		if p.Row >= rows {
			delete(s.cells, p)
		}
	}
	s.props.RowCount = rows
	return nil
}

// InsertColumn implements Backend.
func (m *Memory) InsertColumn(_ context.Context, title string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "insert")
	if err != nil {
		return err
	}
	shifted := make(map[Pos]Cell, len(s.cells))
	for p, c := range s.cells {
		if p.Col >= index {
			p.Col++
		}
		shifted[p] = c
	}
	s.cells = shifted

	dateCols := make(map[int]bool, len(s.dateCols))
	for col := range s.dateCols {
		if col >= index {
			col++
		}
		dateCols[col] = true
	}
	s.dateCols = dateCols
	s.props.ColumnCount++
	return nil
}

// CopyColumn implements Backend.
func (m *Memory) CopyColumn(_ context.Context, title string, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title, "copy")
	if err != nil {
		return err
	}
	var source []CellUpdate
	for p, c := range s.cells {
		if p.Col == from {
			source = append(source, CellUpdate{Pos: Pos{Row: p.Row, Col: to}, Cell: c})
		}
	}
	for p := range s.cells {
		if p.Col == to {
			delete(s.cells, p)
		}
	}
	for _, u := range source {
		s.cells[u.Pos] = u.Cell
	}
	if s.dateCols[from] {
		s.dateCols[to] = true
	} else {
		delete(s.dateCols, to)
	}
	return nil
}
