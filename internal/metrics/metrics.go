// Package metrics bundles the Prometheus collectors for import runs and
// the HTTP surface. All increment helpers are nil-safe so callers can run
// without metrics wired (tests, batch jobs).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all registered collectors on a dedicated registry.
type Metrics struct {
	Registry       *prometheus.Registry
	RunsTotal      *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	CatalogLookups *prometheus.CounterVec
	RequestsTotal  *prometheus.CounterVec
}

// New constructs and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelist_import_runs_total",
			Help: "Completed import runs by outcome.",
		},
		[]string{"outcome"},
	)
	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelist_import_rows_total",
			Help: "Processed import rows by outcome.",
		},
		[]string{"outcome"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelist_import_run_duration_seconds",
			Help:    "Wall-clock duration of import runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelist_catalog_lookups_total",
			Help: "External catalog lookups by result.",
		},
		[]string{"result"},
	)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelist_http_requests_total",
			Help: "HTTP requests by method and status class.",
		},
		[]string{"method", "class"},
	)

	registry.MustRegister(runs, rows, runDuration, lookups, requests)

	return &Metrics{
		Registry:       registry,
		RunsTotal:      runs,
		RowsTotal:      rows,
		RunDuration:    runDuration,
		CatalogLookups: lookups,
		RequestsTotal:  requests,
	}
}

// IncRun records a completed run with its outcome ("ok" or "failed").
func (m *Metrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// IncRow records one processed row by outcome
// (created, merged, failed, skipped).
func (m *Metrics) IncRow(outcome string) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRun records a run's duration.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

// IncLookup records a catalog lookup result ("hit", "miss", "error").
func (m *Metrics) IncLookup(result string) {
	if m == nil {
		return
	}
	m.CatalogLookups.WithLabelValues(result).Inc()
}

// IncRequest records an HTTP request by method and status class ("2xx"...).
func (m *Metrics) IncRequest(method, class string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, class).Inc()
}
