// Package sqlitesheet stores a workbook in a local SQLite file so the
// pipeline can run end to end without a hosted spreadsheet.
package sqlitesheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheets (
	title     TEXT PRIMARY KEY,
	id        INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	col_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS cells (
	sheet     TEXT NOT NULL,
	row       INTEGER NOT NULL,
	col       INTEGER NOT NULL,
	kind      INTEGER NOT NULL,
	num       REAL,
	str       TEXT,
	formula   TEXT,
	formatted TEXT,
	PRIMARY KEY (sheet, row, col)
);`

// Store is a sheet.Backend backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the workbook at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes serialized and makes :memory: usable.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSheet implements sheet.Creator. An existing sheet is left as is.
func (s *Store) CreateSheet(ctx context.Context, title string, rows, cols int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sheets (title, id, row_count, col_count)
		 SELECT ?, COALESCE(MAX(id), 0) + 1, ?, ? FROM sheets WHERE true
		 ON CONFLICT (title) DO NOTHING`,
		title, rows, cols)
	if err != nil {
		return fmt.Errorf("create sheet %q: %w", title, err)
	}
	return nil
}

// Properties implements sheet.Backend.
func (s *Store) Properties(ctx context.Context, title string) (sheet.Properties, error) {
	p := sheet.Properties{Title: title}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, row_count, col_count FROM sheets WHERE title = ?`, title,
	).Scan(&p.ID, &p.RowCount, &p.ColumnCount)
	if errors.Is(err, sql.ErrNoRows) {
		return sheet.Properties{}, fmt.Errorf("%q: %w", title, sheet.ErrSheetNotFound)
	}
	if err != nil {
		return sheet.Properties{}, fmt.Errorf("read properties of %q: %w", title, err)
	}
	return p, nil
}

// Load implements sheet.Backend.
func (s *Store) Load(ctx context.Context, title string, r sheet.GridRange) (map[sheet.Pos]sheet.Cell, error) {
	if _, err := s.Properties(ctx, title); err != nil {
		return nil, err
	}

	endCol := r.EndCol
	if endCol == 0 {
		endCol = int(^uint32(0) >> 1)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, col, kind, num, str, formula, formatted FROM cells
		 WHERE sheet = ? AND row >= ? AND row < ? AND col >= ? AND col < ?`,
		title, r.StartRow, r.EndRow, r.StartCol, endCol)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	out := make(map[sheet.Pos]sheet.Cell)
	for rows.Next() {
		var (
			p                     sheet.Pos
			kind                  int
			num                   sql.NullFloat64
			str, formula, display sql.NullString
		)
		if err := rows.Scan(&p.Row, &p.Col, &kind, &num, &str, &formula, &display); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		c := sheet.Cell{
			Kind:      sheet.Kind(kind),
			Formula:   formula.String,
			Formatted: display.String,
		}
		switch c.Kind {
		case sheet.Number:
			c.Number = num.Float64
		case sheet.String:
			c.Text = str.String
		case sheet.Bool:
			c.Bool = num.Float64 != 0
		}
		out[p] = c
	}
	return out, rows.Err()
}

// Write implements sheet.Backend. All updates are applied in one
// transaction.
func (s *Store) Write(ctx context.Context, title string, updates []sheet.CellUpdate) error {
	props, err := s.Properties(ctx, title)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if u.Row >= props.RowCount {
				return fmt.Errorf("row %d outside grid of %d rows", u.Row, props.RowCount)
			}
			if u.Cell.IsEmpty() {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM cells WHERE sheet = ? AND row = ? AND col = ?`,
					title, u.Row, u.Col); err != nil {
					return err
				}
				continue
			}

			var num sql.NullFloat64
			var str sql.NullString
			switch u.Cell.Kind {
			case sheet.Number:
				num = sql.NullFloat64{Float64: u.Cell.Number, Valid: true}
			case sheet.String:
				str = sql.NullString{String: u.Cell.Text, Valid: true}
			case sheet.Bool:
				if u.Cell.Bool {
					num = sql.NullFloat64{Float64: 1, Valid: true}
				} else {
					num = sql.NullFloat64{Float64: 0, Valid: true}
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cells (sheet, row, col, kind, num, str, formula, formatted)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (sheet, row, col) DO UPDATE SET
				   kind = excluded.kind, num = excluded.num, str = excluded.str,
				   formula = excluded.formula, formatted = excluded.formatted`,
				title, u.Row, u.Col, int(u.Cell.Kind), num, str,
				nullable(u.Cell.Formula), nullable(u.Cell.String())); err != nil {
				return err
			}
		}
		return nil
	})
}

// Resize implements sheet.Backend.
func (s *Store) Resize(ctx context.Context, title string, rows int) error {
	if _, err := s.Properties(ctx, title); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheets SET row_count = ? WHERE title = ?`, rows, title); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM cells WHERE sheet = ? AND row >= ?`, title, rows)
		return err
	})
}

// InsertColumn implements sheet.Backend. Columns are shifted in two steps
// through negative indexes so the primary key never collides mid-update.
func (s *Store) InsertColumn(ctx context.Context, title string, index int) error {
	if _, err := s.Properties(ctx, title); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE cells SET col = -(col + 1) WHERE sheet = ? AND col >= ?`, title, index); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE cells SET col = -col WHERE sheet = ? AND col < 0`, title); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE sheets SET col_count = col_count + 1 WHERE title = ?`, title)
		return err
	})
}

// CopyColumn implements sheet.Backend.
func (s *Store) CopyColumn(ctx context.Context, title string, from, to int) error {
	if _, err := s.Properties(ctx, title); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cells WHERE sheet = ? AND col = ?`, title, to); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cells (sheet, row, col, kind, num, str, formula, formatted)
			 SELECT sheet, row, ?, kind, num, str, formula, formatted
			 FROM cells WHERE sheet = ? AND col = ?`, to, title, from)
		return err
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ sheet.Backend = (*Store)(nil)
var _ sheet.Creator = (*Store)(nil)
