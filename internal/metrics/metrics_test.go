package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.ArticlesFetched(40)
	r.ArticlesFetched(2)
	if got := testutil.ToFloat64(r.articlesFetched); got != 42 {
		t.Errorf("articles fetched = %v, want 42", got)
	}

	r.ExtractionMiss("critical")
	r.ExtractionMiss("critical")
	r.ExtractionMiss("deceased")
	if got := testutil.ToFloat64(r.extractionMisses.WithLabelValues("critical")); got != 2 {
		t.Errorf("critical misses = %v, want 2", got)
	}

	r.RowsWritten("Tokyo", 2)
	r.RowsWritten("Tokyo", 0)
	if got := testutil.ToFloat64(r.rowsWritten.WithLabelValues("Tokyo")); got != 2 {
		t.Errorf("rows written = %v, want 2", got)
	}

	r.SummaryWrite("rejected")
	if got := testutil.ToFloat64(r.summaryWrites.WithLabelValues("rejected")); got != 1 {
		t.Errorf("summary writes = %v, want 1", got)
	}
}

func TestRecorder_ObserveJob(t *testing.T) {
	r := New()

	r.ObserveJob("nhk-summary", time.Now().Add(-time.Second), nil)
	r.ObserveJob("nhk-summary", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(r.jobFailures.WithLabelValues("nhk-summary")); got != 1 {
		t.Errorf("job failures = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.jobDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	// None of these may panic.
	r.ArticlesFetched(1)
	r.ExtractionMiss("x")
	r.RowsWritten("x", 1)
	r.SummaryWrite("x")
	r.ObserveJob("x", time.Now(), nil)
	if r.Registry() != nil {
		t.Error("nil recorder should have nil registry")
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ArticlesFetched(3)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "covid_jp_sync_articles_fetched_total 3") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
