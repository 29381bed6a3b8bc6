package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Due date computation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeCalendar = "calendar_error"
)

// Metrics owns the prometheus collectors exposed at /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	dueDates       *prometheus.CounterVec
	dueDateLatency prometheus.Histogram
	breached       prometheus.Counter
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Error responses by method, route and error code.",
		}, []string{"method", "path", "code"}),
		dueDates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_due_date_computations_total",
			Help: "Due date computations by outcome.",
		}, []string{"outcome"}),
		dueDateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sla_due_date_compute_seconds",
			Help:    "Time spent computing a due date.",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		breached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sla_tickets_breached_total",
			Help: "Tickets flagged as past their resolution due date.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.requestLatency, m.errors, m.dueDates, m.dueDateLatency, m.breached,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts an error response by its domain code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// ObserveDueDate records one due date computation.
func (m *Metrics) ObserveDueDate(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.dueDates.WithLabelValues(outcome).Inc()
	m.dueDateLatency.Observe(took.Seconds())
}

// AddBreached counts tickets flagged by the sweeper.
func (m *Metrics) AddBreached(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.breached.Add(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
