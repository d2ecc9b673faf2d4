// Package metrics provides Prometheus metrics for the rondo load generator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the load generator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Traffic metrics - one series per simulated request
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	// Engine metrics - worker lifecycle and pacing
	workersActive   prometheus.Gauge
	iterationsTotal prometheus.Counter
	reportsTotal    prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rondo",
		subsystem:        "loadgen",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.requestsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "requests_total",
			Help:      "Total number of simulated requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	m.requestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "request_duration_milliseconds",
			Help:      "Simulated request latency in milliseconds by action",
			Buckets:   m.histogramBuckets,
		},
		[]string{"action"},
	)

	m.requestErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "request_errors_total",
			Help:      "Total number of failed simulated requests by action",
		},
		[]string{"action"},
	)

	m.workersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers_active",
		Help:      "Current number of running simulated-user workers",
	})

	m.iterationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "iterations_total",
		Help:      "Total number of completed worker loop iterations",
	})

	m.reportsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_total",
		Help:      "Total number of metrics reports printed",
	})
}

// RecordRequest records a completed simulated request.
func RecordRequest(action, outcome string) {
	globalManager.requestsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordRequestDuration records the latency of a simulated request in milliseconds.
func RecordRequestDuration(action string, latencyMs float64) {
	globalManager.requestDuration.WithLabelValues(action).Observe(latencyMs)
}

// RecordRequestError increments the error counter for an action.
func RecordRequestError(action string) {
	globalManager.requestErrors.WithLabelValues(action).Inc()
}

// UpdateActiveWorkers sets the number of running workers.
func UpdateActiveWorkers(count int) {
	globalManager.workersActive.Set(float64(count))
}

// RecordIteration increments the completed iteration counter.
func RecordIteration() {
	globalManager.iterationsTotal.Inc()
}

// RecordReport increments the printed report counter.
func RecordReport() {
	globalManager.reportsTotal.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
