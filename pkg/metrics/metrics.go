// Package metrics defines the Prometheus metric collectors used by the
// ingestion pipeline and the query API, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	FetchAttemptsTotal *prometheus.CounterVec
	DaysProcessedTotal *prometheus.CounterVec
	StagingHitsTotal   prometheus.Counter
	StagingMissesTotal prometheus.Counter
	DocsUpsertedTotal  prometheus.Counter
	DocsDroppedTotal   prometheus.Counter
	UpsertFailedTotal  prometheus.Counter

	QueryCacheHitsTotal   prometheus.Counter
	QueryCacheMissesTotal prometheus.Counter
	SummaryLatency        prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		FetchAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_fetch_attempts_total",
				Help: "Upstream fetch attempts by outcome (success, rate_limited, transient, permanent).",
			},
			[]string{"outcome"},
		),
		DaysProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_days_processed_total",
				Help: "Day-tasks completed by status (success, failed).",
			},
			[]string{"status"},
		),
		StagingHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_staging_hits_total",
				Help: "Day-tasks served from staged raw snapshots without a network call.",
			},
		),
		StagingMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_staging_misses_total",
				Help: "Day-tasks that required an upstream fetch.",
			},
		),
		DocsUpsertedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_documents_upserted_total",
				Help: "Documents written to the store (inserts and updates).",
			},
		),
		DocsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_documents_dropped_total",
				Help: "Upstream records dropped for missing document_number.",
			},
		),
		UpsertFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_upsert_failures_total",
				Help: "Per-document upsert failures recorded without aborting the batch.",
			},
		),
		QueryCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		QueryCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		SummaryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_latency_seconds",
				Help:    "LLM summarization latency in seconds.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FetchAttemptsTotal,
		m.DaysProcessedTotal,
		m.StagingHitsTotal,
		m.StagingMissesTotal,
		m.DocsUpsertedTotal,
		m.DocsDroppedTotal,
		m.UpsertFailedTotal,
		m.QueryCacheHitsTotal,
		m.QueryCacheMissesTotal,
		m.SummaryLatency,
	)

	return m
}

// ObserveFetch records one fetch attempt outcome. Safe on a nil receiver so
// components can run without metrics wired (tests, one-off CLI runs).
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.FetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDay records a completed day-task.
func (m *Metrics) ObserveDay(status string) {
	if m == nil {
		return
	}
	m.DaysProcessedTotal.WithLabelValues(status).Inc()
}

// ObserveStaging records whether a day was served from the staging cache.
func (m *Metrics) ObserveStaging(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.StagingHitsTotal.Inc()
	} else {
		m.StagingMissesTotal.Inc()
	}
}

// ObserveUpsert records upsert counts and drops for one day.
func (m *Metrics) ObserveUpsert(written, failed, dropped int) {
	if m == nil {
		return
	}
	m.DocsUpsertedTotal.Add(float64(written))
	m.UpsertFailedTotal.Add(float64(failed))
	m.DocsDroppedTotal.Add(float64(dropped))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
