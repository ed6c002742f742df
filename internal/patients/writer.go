package patients

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/metrics"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

// Result outcomes.
const (
	ResultUpdated  = "updated"
	ResultNoChange = "no change"
)

// RowUpdate reports one changed row.
type RowUpdate struct {
	Prefecture string               `json:"prefecture"`
	Sheet      string               `json:"sheet"`
	Row        int                  `json:"row"`
	Confirmed  *article.Observation `json:"confirmed,omitempty"`
	Deceased   *article.Observation `json:"deceased,omitempty"`
}

// Result is the outcome of Apply.
type Result struct {
	Result      string      `json:"result"`
	UpdatedRows []RowUpdate `json:"updatedRows"`
	// Pending lists the staged cell writes per sheet when nothing was
	// committed.
	Pending map[string][]sheet.CellUpdate `json:"pending,omitempty"`
}

// Writer applies reconciled updates to the patient sheets.
type Writer struct {
	backend sheet.Backend
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// NewWriter creates a Writer. logger and m may be nil.
func NewWriter(b sheet.Backend, logger *zap.Logger, m *metrics.Recorder) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{backend: b, logger: logger, metrics: m}
}

type tab struct {
	sheet *sheet.Sheet
	index *Index
}

// Apply writes updates for date. Rows are staged sheet by sheet, deaths
// before confirmed counts; touched sheets are saved concurrently only when
// commit is set.
func (w *Writer) Apply(ctx context.Context, date string, updates article.Updates, commit bool) (*Result, error) {
	if _, err := sheet.SerialDate(date); err != nil {
		return nil, err
	}
	for _, name := range updates.Prefectures() {
		if _, ok := prefecture.IDPrefix(name); !ok {
			return nil, fmt.Errorf("unknown prefecture %q", name)
		}
	}

	tabs := make(map[string]*tab)
	open := func(title string) (*tab, error) {
		if t, ok := tabs[title]; ok {
			return t, nil
		}
		s, err := sheet.Open(ctx, w.backend, title)
		if err != nil {
			return nil, err
		}
		start, err := s.LoadTail(ctx, WindowRows)
		if err != nil {
			return nil, err
		}
		t := &tab{sheet: s, index: NewIndex(s, start)}
		tabs[title] = t
		return t, nil
	}

	res := &Result{Result: ResultNoChange, UpdatedRows: []RowUpdate{}}
	for _, name := range updates.Prefectures() {
		upd := updates[name]
		if upd == nil {
			continue
		}
		title := SheetFor(name)
		t, err := open(title)
		if err != nil {
			return nil, err
		}

		if upd.Deceased != nil {
			row, changed, err := t.index.FindOrUpdate(Key{Prefecture: name, Date: date, Deceased: true}, *upd.Deceased)
			if err != nil {
				return nil, err
			}
			if changed {
				res.UpdatedRows = append(res.UpdatedRows, RowUpdate{Prefecture: name, Sheet: title, Row: row, Deceased: upd.Deceased})
			}
		}
		if upd.Confirmed != nil {
			row, changed, err := t.index.FindOrUpdate(Key{Prefecture: name, Date: date}, *upd.Confirmed)
			if err != nil {
				return nil, err
			}
			if changed {
				res.UpdatedRows = append(res.UpdatedRows, RowUpdate{Prefecture: name, Sheet: title, Row: row, Confirmed: upd.Confirmed})
			}
		}
	}

	var dirty []*tab
	for _, t := range tabs {
		if t.sheet.Dirty() {
			dirty = append(dirty, t)
		}
	}

	if !commit {
		for _, t := range dirty {
			if res.Pending == nil {
				res.Pending = make(map[string][]sheet.CellUpdate)
			}
			res.Pending[t.sheet.Title()] = t.sheet.Pending()
			t.sheet.Discard()
		}
		w.logger.Info("patient rows staged, not committed",
			zap.String("date", date),
			zap.Int("rows", len(res.UpdatedRows)),
			zap.Int("sheets", len(dirty)))
		return res, nil
	}
	if len(dirty) == 0 {
		return res, nil
	}

	rows := make(map[string]int)
	for _, u := range res.UpdatedRows {
		rows[u.Sheet]++
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range dirty {
		g.Go(func() error {
			if err := t.sheet.Save(gctx); err != nil {
				return err
			}
			w.metrics.RowsWritten(t.sheet.Title(), rows[t.sheet.Title()])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("saving patient sheets: %w", err)
	}

	res.Result = ResultUpdated
	w.logger.Info("patient rows committed",
		zap.String("date", date),
		zap.Int("rows", len(res.UpdatedRows)),
		zap.Int("sheets", len(dirty)))
	return res, nil
}

// Updates folds the changed rows back into per-prefecture updates, the
// shape the notification report is built from.
func (r *Result) Updates() article.Updates {
	out := make(article.Updates)
	for _, u := range r.UpdatedRows {
		p := out[u.Prefecture]
		if p == nil {
			p = &article.PrefectureUpdate{}
			out[u.Prefecture] = p
		}
		if u.Confirmed != nil {
			p.Confirmed = u.Confirmed
		}
		if u.Deceased != nil {
			p.Deceased = u.Deceased
		}
	}
	return out
}
