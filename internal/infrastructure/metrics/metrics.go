// Package metrics exposes Prometheus collectors for the HTTP surface,
// document transitions and notification delivery.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/documents"
)

// Config holds metrics configuration.
type Config struct {
	Namespace string
	// Service is attached to every series as a constant label.
	Service string
}

// DefaultConfig returns the standard configuration for service.
func DefaultConfig(service string) Config {
	return Config{Namespace: "stockledger", Service: service}
}

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DocumentTransitions *prometheus.CounterVec

	NotificationsSent   *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec

	DBConnections *prometheus.GaugeVec
}

var _ documents.Recorder = (*Metrics)(nil)

// New creates and registers the collectors.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	constLabels := prometheus.Labels{"service": cfg.Service}
	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: constLabels,
		},
	)

	m.DocumentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "document_transitions_total",
			Help:        "Document lifecycle operations by kind, operation and outcome code",
			ConstLabels: constLabels,
		},
		[]string{"kind", "operation", "outcome"},
	)

	m.NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "notifications_total",
			Help:        "Notifications delivered by channel and status",
			ConstLabels: constLabels,
		},
		[]string{"channel", "type", "status"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "circuit_breaker_state",
			Help:        "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			ConstLabels: constLabels,
		},
		[]string{"name"},
	)

	m.DBConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "db_connections",
			Help:        "Database pool connections by state",
			ConstLabels: constLabels,
		},
		[]string{"state"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentTransitions,
		m.NotificationsSent,
		m.CircuitBreakerState,
		m.DBConnections,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveTransition implements documents.Recorder. Successful operations
// are labelled "ok", failures by their error code.
func (m *Metrics) ObserveTransition(kind, operation string, err error) {
	m.DocumentTransitions.WithLabelValues(kind, operation, Outcome(err)).Inc()
}

// RecordNotification counts one delivery attempt.
func (m *Metrics) RecordNotification(channel, kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.NotificationsSent.WithLabelValues(channel, kind, status).Inc()
}

// SetCircuitBreakerState publishes a breaker state (0 closed, 1 half-open, 2 open).
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// SetDBConnections publishes pool occupancy.
func (m *Metrics) SetDBConnections(total, acquired, idle int32) {
	m.DBConnections.WithLabelValues("total").Set(float64(total))
	m.DBConnections.WithLabelValues("acquired").Set(float64(acquired))
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Code
	}
	return apperror.CodeInternal
}
