package verify

import (
	"context"
	"testing"

	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
)

func newWorkbook(t *testing.T) *sheet.Memory {
	t.Helper()
	ctx := context.Background()
	m := sheet.NewMemory()
	if err := m.CreateSheet(ctx, summarysheet.Title, 60, 9); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateSheet(ctx, PrefectureDataTitle, 50, 15); err != nil {
		t.Fatal(err)
	}
	for row := firstSummaryRow; row < lastSummaryRow; row++ {
		m.Put(summarysheet.Title, row, colOurs, sheet.IntCell(row*10))
		m.Put(summarysheet.Title, row, colNHK, sheet.IntCell(row*10))
		m.Put(summarysheet.Title, row, colSummaryName, sheet.StringCell("P"))
	}
	for row := firstDataRow; row < lastDataRow; row++ {
		m.Put(PrefectureDataTitle, row, colActive, sheet.IntCell(5))
	}
	return m
}

func TestCheck_Clean(t *testing.T) {
	m := newWorkbook(t)
	m.Put(summarysheet.Title, 0, summarysheet.LatestCol, sheet.IntCell(44184))

	res, err := Check(context.Background(), m, "2020-12-19")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.HasLatestNhkSummary {
		t.Error("HasLatestNhkSummary = false")
	}
	if !res.OK() {
		t.Errorf("Check() = %+v, want OK", res)
	}
	if res.Date != "2020-12-19" {
		t.Errorf("Date = %q", res.Date)
	}
}

func TestCheck_FindsProblems(t *testing.T) {
	m := newWorkbook(t)
	m.Put(summarysheet.Title, 0, summarysheet.LatestCol, sheet.IntCell(44183))
	m.Put(summarysheet.Title, 15, colOurs, sheet.Cell{Kind: sheet.Number, Number: 149, Formula: "=SUM(A1:A2)"})
	m.Put(summarysheet.Title, 15, colSummaryName, sheet.StringCell("Tokyo"))
	m.Put(summarysheet.Title, 20, colOurs, sheet.Cell{Kind: sheet.Number, Number: 200, Formula: "=X1"})
	m.Put(PrefectureDataTitle, 7, colActive, sheet.IntCell(-3))
	m.Put(PrefectureDataTitle, 7, colDataName, sheet.StringCell("Gifu"))
	// Rows outside the checked ranges are ignored.
	m.Put(summarysheet.Title, 52, colOurs, sheet.IntCell(1))
	m.Put(PrefectureDataTitle, 1, colActive, sheet.IntCell(-1))

	res, err := Check(context.Background(), m, "2020-12-19")
	if err != nil {
		t.Fatal(err)
	}
	if res.HasLatestNhkSummary {
		t.Error("HasLatestNhkSummary = true for a stale H1")
	}
	if len(res.HasPrefectureDifferences) != 1 {
		t.Fatalf("differences = %+v, want 1", res.HasPrefectureDifferences)
	}
	d := res.HasPrefectureDifferences[0]
	if d.Prefecture != "Tokyo" || d.OurValue != "149" || d.NHKValue != "150" {
		t.Errorf("difference = %+v", d)
	}
	if len(res.HasNegativeActive) != 1 || res.HasNegativeActive[0].Prefecture != "Gifu" || res.HasNegativeActive[0].ActiveValue != -3 {
		t.Errorf("negative active = %+v", res.HasNegativeActive)
	}
	if res.OK() {
		t.Error("OK() = true with problems")
	}
}

func TestCheck_IsReadOnly(t *testing.T) {
	m := newWorkbook(t)
	if _, err := Check(context.Background(), m, "2020-12-19"); err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{summarysheet.Title, PrefectureDataTitle} {
		for _, op := range []string{"write", "resize", "insert", "copy"} {
			if n := m.Calls(title, op); n != 0 {
				t.Errorf("%s %s calls = %d", title, op, n)
			}
		}
	}
}

func TestCheck_MissingSheet(t *testing.T) {
	m := sheet.NewMemory()
	if _, err := Check(context.Background(), m, "2020-12-19"); err == nil {
		t.Error("Check() succeeded without sheets")
	}
}
