// Package verify checks the consistency of the published sheets without
// modifying them.
package verify

import (
	"context"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
)

// PrefectureDataTitle is the sheet with the per-prefecture aggregates.
const PrefectureDataTitle = "Prefecture Data"

// Row ranges and columns checked.
const (
	firstSummaryRow = 3
	lastSummaryRow  = 50 // exclusive
	colOurs         = 3
	colNHK          = 4
	colSummaryName  = 5

	firstDataRow = 2
	lastDataRow  = 50 // exclusive
	colActive    = 12
	colDataName  = 1
)

// Difference is a prefecture whose recorded count disagrees with NHK.
type Difference struct {
	Prefecture string `json:"prefecture"`
	OurValue   string `json:"ourValue"`
	NHKValue   string `json:"nhkValue"`
}

// NegativeActive is a prefecture whose active case count went below zero.
type NegativeActive struct {
	Prefecture  string  `json:"prefecture"`
	ActiveValue float64 `json:"activeValue"`
}

// Result is the outcome of Check.
type Result struct {
	Date                     string           `json:"date"`
	HasLatestNhkSummary      bool             `json:"hasLatestNhkSummary"`
	HasPrefectureDifferences []Difference     `json:"hasPrefectureDifferences,omitempty"`
	HasNegativeActive        []NegativeActive `json:"hasNegativeActive,omitempty"`
}

// OK reports whether nothing needs attention.
func (r *Result) OK() bool {
	return r.HasLatestNhkSummary && len(r.HasPrefectureDifferences) == 0 && len(r.HasNegativeActive) == 0
}

// Check compares the sheets against today's date (YYYY-MM-DD, JST).
func Check(ctx context.Context, b sheet.Backend, today string) (*Result, error) {
	serial, err := sheet.SerialDate(today)
	if err != nil {
		return nil, err
	}
	res := &Result{Date: today}

	nhk, err := sheet.Open(ctx, b, summarysheet.Title)
	if err != nil {
		return nil, err
	}
	if err := nhk.LoadA1(ctx, "A1:I59"); err != nil {
		return nil, err
	}
	if n, ok := nhk.Cell(summarysheet.DateRow, summarysheet.LatestCol).Int(); ok && n == serial {
		res.HasLatestNhkSummary = true
	}

	for row := firstSummaryRow; row < lastSummaryRow; row++ {
		ours, theirs := nhk.Cell(row, colOurs), nhk.Cell(row, colNHK)
		if sameEffective(ours, theirs) {
			continue
		}
		res.HasPrefectureDifferences = append(res.HasPrefectureDifferences, Difference{
			Prefecture: nhk.Cell(row, colSummaryName).String(),
			OurValue:   ours.String(),
			NHKValue:   theirs.String(),
		})
	}

	data, err := sheet.Open(ctx, b, PrefectureDataTitle)
	if err != nil {
		return nil, err
	}
	if err := data.LoadA1(ctx, "A1:O50"); err != nil {
		return nil, err
	}
	for row := firstDataRow; row < lastDataRow; row++ {
		c := data.Cell(row, colActive)
		if c.Kind != sheet.Number || c.Number >= 0 {
			continue
		}
		res.HasNegativeActive = append(res.HasNegativeActive, NegativeActive{
			Prefecture:  data.Cell(row, colDataName).String(),
			ActiveValue: c.Number,
		})
	}
	return res, nil
}

// sameEffective compares computed values; these columns are formulas.
func sameEffective(a, b sheet.Cell) bool {
	a.Formula, b.Formula = "", ""
	return a.SameValue(b)
}
