// Package metrics exposes the pipeline's operational counters and job
// timings as Prometheus collectors.
//
// A Recorder owns its registry so tests and multiple servers in one process
// do not collide on the global default registry. All methods are safe on a
// nil *Recorder, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "covid_jp_sync"

// Recorder tracks counters and job timings.
type Recorder struct {
	registry *prometheus.Registry

	articlesFetched  prometheus.Counter
	extractionMisses *prometheus.CounterVec
	rowsWritten      *prometheus.CounterVec
	summaryWrites    *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	jobFailures      *prometheus.CounterVec
}

// New creates a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		articlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_fetched_total",
			Help:      "Total number of feed items fetched from the news listing.",
		}),
		extractionMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_misses_total",
			Help:      "Summary fields that no pattern matched, by field.",
		}, []string{"field"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Patient rows changed and committed, by sheet.",
		}, []string{"sheet"}),
		summaryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_writes_total",
			Help:      "Daily summary write attempts, by outcome.",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of pipeline jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"job"}),
		jobFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failures_total",
			Help:      "Pipeline jobs that returned an error.",
		}, []string{"job"}),
	}

	r.registry.MustRegister(
		r.articlesFetched,
		r.extractionMisses,
		r.rowsWritten,
		r.summaryWrites,
		r.jobDuration,
		r.jobFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ArticlesFetched adds n fetched feed items.
func (r *Recorder) ArticlesFetched(n int) {
	if r == nil {
		return
	}
	r.articlesFetched.Add(float64(n))
}

// ExtractionMiss counts a summary field left absent.
func (r *Recorder) ExtractionMiss(field string) {
	if r == nil {
		return
	}
	r.extractionMisses.WithLabelValues(field).Inc()
}

// RowsWritten adds n committed row changes for sheet.
func (r *Recorder) RowsWritten(sheet string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.rowsWritten.WithLabelValues(sheet).Add(float64(n))
}

// SummaryWrite counts one summary write attempt, e.g. "written",
// "rejected" or "dry_run".
func (r *Recorder) SummaryWrite(outcome string) {
	if r == nil {
		return
	}
	r.summaryWrites.WithLabelValues(outcome).Inc()
}

// ObserveJob records the duration of job since start and counts it as a
// failure when err is non-nil.
func (r *Recorder) ObserveJob(job string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.jobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	if err != nil {
		r.jobFailures.WithLabelValues(job).Inc()
	}
}
