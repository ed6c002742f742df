package sqlitesheet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "workbook.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.CreateSheet(context.Background(), "NHK", 60, 9); err != nil {
		t.Fatalf("CreateSheet() error = %v", err)
	}
	return s
}

func TestStore_PropertiesNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Properties(context.Background(), "Missing")
	if !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("Properties() error = %v, want ErrSheetNotFound", err)
	}
}

func TestStore_CreateSheetIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.CreateSheet(ctx, "NHK", 10, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSheet(ctx, "Tokyo", 10, 2); err != nil {
		t.Fatal(err)
	}
	p, err := s.Properties(ctx, "NHK")
	if err != nil {
		t.Fatal(err)
	}
	if p.RowCount != 60 || p.ColumnCount != 9 || p.ID != 1 {
		t.Errorf("NHK properties = %+v, want untouched", p)
	}
	p, err = s.Properties(ctx, "Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 2 {
		t.Errorf("Tokyo ID = %d, want 2", p.ID)
	}
}

func TestStore_WriteAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Write(ctx, "NHK", []sheet.CellUpdate{
		{Pos: sheet.Pos{Row: 0, Col: 7}, Cell: sheet.IntCell(44184)},
		{Pos: sheet.Pos{Row: 1, Col: 7}, Cell: sheet.FormulaCell(`=HYPERLINK("https://example.com", "Link")`)},
		{Pos: sheet.Pos{Row: 2, Col: 0}, Cell: sheet.StringCell("北海道")},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cells, err := s.Load(ctx, "NHK", sheet.GridRange{StartRow: 0, EndRow: 59, StartCol: 0, EndCol: 9})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("Load() returned %d cells, want 3", len(cells))
	}
	if n, ok := cells[sheet.Pos{Row: 0, Col: 7}].Int(); !ok || n != 44184 {
		t.Errorf("H1 = %v, want 44184", cells[sheet.Pos{Row: 0, Col: 7}])
	}
	if got := cells[sheet.Pos{Row: 1, Col: 7}].Formula; got != `=HYPERLINK("https://example.com", "Link")` {
		t.Errorf("H2 formula = %q", got)
	}
	if got := cells[sheet.Pos{Row: 2, Col: 0}].String(); got != "北海道" {
		t.Errorf("A3 = %q, want 北海道", got)
	}

	// Overwrite then clear.
	err = s.Write(ctx, "NHK", []sheet.CellUpdate{
		{Pos: sheet.Pos{Row: 0, Col: 7}, Cell: sheet.IntCell(44185)},
		{Pos: sheet.Pos{Row: 2, Col: 0}, Cell: sheet.Cell{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	cells, err = s.Load(ctx, "NHK", sheet.Rows(0, 60))
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := cells[sheet.Pos{Row: 0, Col: 7}].Int(); n != 44185 {
		t.Errorf("H1 = %d after overwrite, want 44185", n)
	}
	if _, ok := cells[sheet.Pos{Row: 2, Col: 0}]; ok {
		t.Error("A3 still present after clear")
	}
}

func TestStore_WriteOutsideGrid(t *testing.T) {
	s := openTestStore(t)
	err := s.Write(context.Background(), "NHK", []sheet.CellUpdate{
		{Pos: sheet.Pos{Row: 60, Col: 0}, Cell: sheet.IntCell(1)},
	})
	if err == nil {
		t.Error("Write() past the last row succeeded")
	}
}

func TestStore_Resize(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.Write(ctx, "NHK", []sheet.CellUpdate{
		{Pos: sheet.Pos{Row: 50, Col: 0}, Cell: sheet.IntCell(1)},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Resize(ctx, "NHK", 40); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Properties(ctx, "NHK")
	if p.RowCount != 40 {
		t.Errorf("RowCount = %d, want 40", p.RowCount)
	}
	cells, _ := s.Load(ctx, "NHK", sheet.Rows(0, 100))
	if len(cells) != 0 {
		t.Errorf("cells past the new size survived: %v", cells)
	}
}

func TestStore_InsertAndCopyColumn(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.Write(ctx, "NHK", []sheet.CellUpdate{
		{Pos: sheet.Pos{Row: 0, Col: 6}, Cell: sheet.IntCell(1)},
		{Pos: sheet.Pos{Row: 0, Col: 7}, Cell: sheet.IntCell(2)},
		{Pos: sheet.Pos{Row: 0, Col: 8}, Cell: sheet.IntCell(3)},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.InsertColumn(ctx, "NHK", 8); err != nil {
		t.Fatalf("InsertColumn() error = %v", err)
	}
	if err := s.CopyColumn(ctx, "NHK", 7, 8); err != nil {
		t.Fatalf("CopyColumn() error = %v", err)
	}

	cells, err := s.Load(ctx, "NHK", sheet.Rows(0, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]int{6: 1, 7: 2, 8: 2, 9: 3}
	for col, n := range want {
		got, _ := cells[sheet.Pos{Row: 0, Col: col}].Int()
		if got != n {
			t.Errorf("col %d = %d, want %d", col, got, n)
		}
	}
	p, _ := s.Properties(ctx, "NHK")
	if p.ColumnCount != 10 {
		t.Errorf("ColumnCount = %d, want 10", p.ColumnCount)
	}
}

func TestStore_WithSheet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sh, err := sheet.Open(ctx, s, "NHK")
	if err != nil {
		t.Fatal(err)
	}
	if err := sh.LoadA1(ctx, "A1:I59"); err != nil {
		t.Fatal(err)
	}
	sh.Set(2, 7, sheet.IntCell(10))
	row := sh.AppendRow()
	sh.Set(row, 0, sheet.StringCell("appended"))
	if err := sh.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	p, _ := s.Properties(ctx, "NHK")
	if p.RowCount != 61 {
		t.Errorf("RowCount = %d, want 61", p.RowCount)
	}
	cells, _ := s.Load(ctx, "NHK", sheet.Rows(60, 61))
	if got := cells[sheet.Pos{Row: 60, Col: 0}].String(); got != "appended" {
		t.Errorf("appended row = %q", got)
	}
}
