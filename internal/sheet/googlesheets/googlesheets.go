// Package googlesheets implements sheet.Backend on the Google Sheets v4 API.
package googlesheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

// Client talks to one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string

	mu    sync.Mutex
	props map[string]sheet.Properties
}

// New creates a client for spreadsheetID. Pass option.WithCredentialsJSON
// for a service account; tests pass option.WithEndpoint instead.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewWithCredentials creates a client authenticated with a service account
// key.
func NewWithCredentials(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	return New(ctx, spreadsheetID, option.WithCredentialsJSON(credentialsJSON))
}

// Properties implements sheet.Backend. Properties of every sheet are fetched
// once and refreshed after structural changes.
func (c *Client) Properties(ctx context.Context, title string) (sheet.Properties, error) {
	c.mu.Lock()
	cached := c.props
	c.mu.Unlock()

	if cached == nil {
		var err error
		if cached, err = c.refresh(ctx); err != nil {
			return sheet.Properties{}, err
		}
	}
	p, ok := cached[title]
	if !ok {
		return sheet.Properties{}, fmt.Errorf("%q: %w", title, sheet.ErrSheetNotFound)
	}
	return p, nil
}

func (c *Client) refresh(ctx context.Context) (map[string]sheet.Properties, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet properties: %w", err)
	}

	props := make(map[string]sheet.Properties, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		p := sheet.Properties{Title: s.Properties.Title, ID: s.Properties.SheetId}
		if g := s.Properties.GridProperties; g != nil {
			p.RowCount = int(g.RowCount)
			p.ColumnCount = int(g.ColumnCount)
		}
		props[p.Title] = p
	}

	c.mu.Lock()
	c.props = props
	c.mu.Unlock()
	return props, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.props = nil
	c.mu.Unlock()
}

// Load implements sheet.Backend.
func (c *Client) Load(ctx context.Context, title string, r sheet.GridRange) (map[sheet.Pos]sheet.Cell, error) {
	if _, err := c.Properties(ctx, title); err != nil {
		return nil, err
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Ranges(sheet.FormatA1(title, r)).
		IncludeGridData(true).
		Fields("sheets(data(startRow,startColumn,rowData(values(userEnteredValue,effectiveValue,formattedValue))))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get grid data: %w", err)
	}

	out := make(map[sheet.Pos]sheet.Cell)
	for _, s := range ss.Sheets {
		for _, data := range s.Data {
			for i, row := range data.RowData {
				for j, v := range row.Values {
					cell := fromCellData(v)
					if cell.IsEmpty() {
						continue
					}
					out[sheet.Pos{Row: int(data.StartRow) + i, Col: int(data.StartColumn) + j}] = cell
				}
			}
		}
	}
	return out, nil
}

// Write implements sheet.Backend with one batch update per call.
func (c *Client) Write(ctx context.Context, title string, updates []sheet.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	p, err := c.Properties(ctx, title)
	if err != nil {
		return err
	}

	reqs := make([]*sheets.Request, 0, len(updates))
	for _, u := range updates {
		reqs = append(reqs, &sheets.Request{
			UpdateCells: &sheets.UpdateCellsRequest{
				Start: &sheets.GridCoordinate{
					SheetId:         p.ID,
					RowIndex:        int64(u.Row),
					ColumnIndex:     int64(u.Col),
					ForceSendFields: []string{"SheetId", "RowIndex", "ColumnIndex"},
				},
				Rows: []*sheets.RowData{{
					Values: []*sheets.CellData{{UserEnteredValue: toExtendedValue(u.Cell)}},
				}},
				Fields: "userEnteredValue",
			},
		})
	}
	return c.batch(ctx, reqs)
}

// Resize implements sheet.Backend.
func (c *Client) Resize(ctx context.Context, title string, rows int) error {
	p, err := c.Properties(ctx, title)
	if err != nil {
		return err
	}
	err = c.batch(ctx, []*sheets.Request{{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         p.ID,
				GridProperties:  &sheets.GridProperties{RowCount: int64(rows)},
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "gridProperties.rowCount",
		},
	}})
	c.invalidate()
	return err
}

// InsertColumn implements sheet.Backend.
func (c *Client) InsertColumn(ctx context.Context, title string, index int) error {
	p, err := c.Properties(ctx, title)
	if err != nil {
		return err
	}
	err = c.batch(ctx, []*sheets.Request{{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         p.ID,
				Dimension:       "COLUMNS",
				StartIndex:      int64(index),
				EndIndex:        int64(index + 1),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
			InheritFromBefore: index > 0,
		},
	}})
	c.invalidate()
	return err
}

// CopyColumn implements sheet.Backend.
func (c *Client) CopyColumn(ctx context.Context, title string, from, to int) error {
	p, err := c.Properties(ctx, title)
	if err != nil {
		return err
	}
	column := func(col int) *sheets.GridRange {
		return &sheets.GridRange{
			SheetId:          p.ID,
			StartRowIndex:    0,
			EndRowIndex:      int64(p.RowCount),
			StartColumnIndex: int64(col),
			EndColumnIndex:   int64(col + 1),
			ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
		}
	}
	return c.batch(ctx, []*sheets.Request{{
		CopyPaste: &sheets.CopyPasteRequest{
			Source:           column(from),
			Destination:      column(to),
			PasteType:        "PASTE_NORMAL",
			PasteOrientation: "NORMAL",
		},
	}})
}

func (c *Client) batch(ctx context.Context, reqs []*sheets.Request) error {
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update (%d requests): %w", len(reqs), err)
	}
	return nil
}

func fromCellData(v *sheets.CellData) sheet.Cell {
	if v == nil {
		return sheet.Cell{}
	}
	var c sheet.Cell
	if u := v.UserEnteredValue; u != nil && u.FormulaValue != nil {
		c.Formula = *u.FormulaValue
	}
	val := v.EffectiveValue
	if val == nil {
		val = v.UserEnteredValue
	}
	if val != nil {
		switch {
		case val.NumberValue != nil:
			c.Kind, c.Number = sheet.Number, *val.NumberValue
		case val.StringValue != nil:
			c.Kind, c.Text = sheet.String, *val.StringValue
		case val.BoolValue != nil:
			c.Kind, c.Bool = sheet.Bool, *val.BoolValue
		}
	}
	c.Formatted = v.FormattedValue
	return c
}

// toExtendedValue returns nil for an empty cell, which clears it under the
// userEnteredValue field mask.
func toExtendedValue(c sheet.Cell) *sheets.ExtendedValue {
	if c.Formula != "" {
		f := c.Formula
		return &sheets.ExtendedValue{FormulaValue: &f}
	}
	switch c.Kind {
	case sheet.Number:
		n := c.Number
		return &sheets.ExtendedValue{NumberValue: &n}
	case sheet.String:
		s := c.Text
		return &sheets.ExtendedValue{StringValue: &s}
	case sheet.Bool:
		b := c.Bool
		return &sheets.ExtendedValue{BoolValue: &b}
	}
	return nil
}

var _ sheet.Backend = (*Client)(nil)
