// Package metrics holds the console's Prometheus collectors. Each Metrics
// value owns its registry so tests never share global state.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of collectors exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	IntakeSaves    *prometheus.CounterVec
	ConflictChecks *prometheus.CounterVec
	CSVExports     *prometheus.CounterVec
	DomainEvents   *prometheus.CounterVec
	LiveSessions   prometheus.Gauge
	HTTPDuration   *prometheus.HistogramVec
}

// New builds and registers every collector, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		IntakeSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_saves_total",
			Help: "Intake records saved, by operation (create or update).",
		}, []string{"op"}),
		ConflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "conflict_checks_total",
			Help: "Conflict checks run, by outcome (clear, matches, error).",
		}, []string{"outcome"}),
		CSVExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csv_exports_total",
			Help: "CSV exports generated, by report.",
		}, []string{"report"}),
		DomainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_events_total",
			Help: "Domain events dispatched on the event bus, by type.",
		}, []string{"type"}),
		LiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_sessions",
			Help: "Open websocket dashboard sessions.",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	m.Registry.MustRegister(
		m.IntakeSaves,
		m.ConflictChecks,
		m.CSVExports,
		m.DomainEvents,
		m.LiveSessions,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one request's latency.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// IntakeSaved counts an intake save.
func (m *Metrics) IntakeSaved(created bool) {
	op := "update"
	if created {
		op = "create"
	}
	m.IntakeSaves.WithLabelValues(op).Inc()
}

// ConflictChecked counts a conflict check by outcome.
func (m *Metrics) ConflictChecked(matches int, err error) {
	switch {
	case err != nil:
		m.ConflictChecks.WithLabelValues("error").Inc()
	case matches == 0:
		m.ConflictChecks.WithLabelValues("clear").Inc()
	default:
		m.ConflictChecks.WithLabelValues("matches").Inc()
	}
}

// Exported counts a CSV export.
func (m *Metrics) Exported(report string) { m.CSVExports.WithLabelValues(report).Inc() }
