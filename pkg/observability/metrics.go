package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ledger metrics
	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	CommitWritesTotal  prometheus.Counter

	// Authorization metrics
	AuthorizationDenialsTotal *prometheus.CounterVec

	// Business metrics
	RecordsTotal          prometheus.Gauge
	VersionsAppendedTotal *prometheus.CounterVec
	AccessGrantsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics on registry.
// A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vision_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_ledger_invocations_total",
				Help: "Ledger invocations by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vision_ledger_invocation_duration_seconds",
				Help:    "Ledger invocation duration including commit",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		CommitWritesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vision_ledger_commit_writes_total",
				Help: "Key writes committed to the backend",
			},
		),
		AuthorizationDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_authorization_denials_total",
				Help: "Entry point calls rejected by the authorization decision",
			},
			[]string{"operation"},
		),
		RecordsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vision_records_total",
				Help: "Number of vision records created",
			},
		),
		VersionsAppendedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_record_versions_appended_total",
				Help: "Record versions appended, by cause (create, update, rollback)",
			},
			[]string{"cause"},
		),
		AccessGrantsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_access_grants_total",
				Help: "Access grant changes by action (grant, revoke)",
			},
			[]string{"action"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.InvocationsTotal,
		m.InvocationDuration,
		m.CommitWritesTotal,
		m.AuthorizationDenialsTotal,
		m.RecordsTotal,
		m.VersionsAppendedTotal,
		m.AccessGrantsTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordInvocation records a ledger invocation outcome
func (m *Metrics) RecordInvocation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.InvocationsTotal.WithLabelValues(operation, status).Inc()
	m.InvocationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCommit records the size of a committed write-set
func (m *Metrics) RecordCommit(writes int) {
	if m == nil {
		return
	}
	m.CommitWritesTotal.Add(float64(writes))
}

// RecordDenial records an authorization denial
func (m *Metrics) RecordDenial(operation string) {
	if m == nil {
		return
	}
	m.AuthorizationDenialsTotal.WithLabelValues(operation).Inc()
}

// RecordVersionAppended records a new record version
func (m *Metrics) RecordVersionAppended(cause string) {
	if m == nil {
		return
	}
	m.VersionsAppendedTotal.WithLabelValues(cause).Inc()
}

// RecordAccessChange records an access grant or revoke
func (m *Metrics) RecordAccessChange(action string) {
	if m == nil {
		return
	}
	m.AccessGrantsTotal.WithLabelValues(action).Inc()
}

// SetRecordsTotal updates the record count gauge
func (m *Metrics) SetRecordsTotal(n uint64) {
	if m == nil {
		return
	}
	m.RecordsTotal.Set(float64(n))
}
