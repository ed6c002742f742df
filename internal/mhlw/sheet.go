package mhlw

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
)

// Prefecture Data layout written from the attachment: one row per
// prefecture from row 3, recoveries in E and cases in I.
const (
	PrefectureDataTitle = "Prefecture Data"
	firstPrefectureRow  = 2
	colRecoveries       = 4
	colCases            = 8
)

// WritePrefectureData stages the table into Prefecture Data and saves it
// when commit is set. It returns the number of cells that differ.
func WritePrefectureData(ctx context.Context, b sheet.Backend, table *PrefectureTable, commit bool) (int, error) {
	if !table.Complete() {
		return 0, fmt.Errorf("%d rows: %w", len(table.Rows), ErrIncompleteTable)
	}

	s, err := sheet.Open(ctx, b, PrefectureDataTitle)
	if err != nil {
		return 0, err
	}
	cases, recoveries := table.Ordered()
	last := firstPrefectureRow + len(cases)
	if err := s.Load(ctx, sheet.GridRange{StartRow: firstPrefectureRow, EndRow: last, StartCol: colRecoveries, EndCol: colCases + 1}); err != nil {
		return 0, err
	}

	changed := 0
	for i := range cases {
		if s.Set(firstPrefectureRow+i, colRecoveries, sheet.IntCell(recoveries[i])) {
			changed++
		}
		if s.Set(firstPrefectureRow+i, colCases, sheet.IntCell(cases[i])) {
			changed++
		}
	}
	if !commit {
		return changed, nil
	}
	return changed, s.Save(ctx)
}
