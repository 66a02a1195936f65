// Package metrics provides Prometheus metrics for the typerank leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	scoreSubmissions *prometheus.CounterVec
	rankingQueries   *prometheus.CounterVec
	adminOperations  *prometheus.CounterVec
	players          *prometheus.GaugeVec

	// Storage metrics
	storageLatency *prometheus.HistogramVec
	storageErrors  *prometheus.CounterVec

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         prometheus.Counter
	authFailures        prometheus.Counter

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry the
// metrics land on prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "typerank",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.scoreSubmissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "score_submissions_total",
			Help:      "Score submissions by tier and outcome (recorded, ignored, rejected)",
		},
		[]string{"tier", "outcome"},
	)

	m.rankingQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_queries_total",
			Help:      "Ranking reads by tier",
		},
		[]string{"tier"},
	)

	m.adminOperations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "admin_operations_total",
			Help:      "Admin moderation operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.players = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "players",
			Help:      "Players currently holding a score, by tier",
		},
		[]string{"tier"},
	)

	m.storageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "storage_latency_milliseconds",
			Help:      "Document load/save latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"backend", "operation"},
	)

	m.storageErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "storage_errors_total",
			Help:      "Document load/save failures",
		},
		[]string{"backend", "operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limited_total",
		Help:      "Score submissions rejected by the per-client rate limiter",
	})

	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Admin requests rejected for missing or bad credentials",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordScoreSubmission counts a submission outcome for a tier.
func (m *Manager) RecordScoreSubmission(tier, outcome string) {
	m.scoreSubmissions.WithLabelValues(tier, outcome).Inc()
}

// RecordRankingQuery counts a ranking read for a tier.
func (m *Manager) RecordRankingQuery(tier string) {
	m.rankingQueries.WithLabelValues(tier).Inc()
}

// RecordAdminOperation counts an admin operation outcome.
func (m *Manager) RecordAdminOperation(operation, outcome string) {
	m.adminOperations.WithLabelValues(operation, outcome).Inc()
}

// UpdatePlayers sets the number of players in a tier.
func (m *Manager) UpdatePlayers(tier string, count int) {
	m.players.WithLabelValues(tier).Set(float64(count))
}

// RecordStorageLatency observes a document load or save.
func (m *Manager) RecordStorageLatency(backend, operation string, latencyMs float64) {
	m.storageLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// RecordStorageError counts a failed document load or save.
func (m *Manager) RecordStorageError(backend, operation string) {
	m.storageErrors.WithLabelValues(backend, operation).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a rate-limited request.
func (m *Manager) RecordRateLimited() {
	m.rateLimited.Inc()
}

// RecordAuthFailure counts a rejected admin request.
func (m *Manager) RecordAuthFailure() {
	m.authFailures.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	m.systemGCPauseTime.Observe(pauseMs)
}

// Package-level shortcuts on the global manager.

// RecordScoreSubmission counts a submission outcome for a tier.
func RecordScoreSubmission(tier, outcome string) { globalManager.RecordScoreSubmission(tier, outcome) }

// RecordRankingQuery counts a ranking read for a tier.
func RecordRankingQuery(tier string) { globalManager.RecordRankingQuery(tier) }

// RecordAdminOperation counts an admin operation outcome.
func RecordAdminOperation(operation, outcome string) {
	globalManager.RecordAdminOperation(operation, outcome)
}

// UpdatePlayers sets the number of players in a tier.
func UpdatePlayers(tier string, count int) { globalManager.UpdatePlayers(tier, count) }

// RecordStorageLatency observes a document load or save.
func RecordStorageLatency(backend, operation string, latencyMs float64) {
	globalManager.RecordStorageLatency(backend, operation, latencyMs)
}

// RecordStorageError counts a failed document load or save.
func RecordStorageError(backend, operation string) { globalManager.RecordStorageError(backend, operation) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) { globalManager.RecordErrorByType(errorType, severity) }

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordRateLimited counts a rate-limited request.
func RecordRateLimited() { globalManager.RecordRateLimited() }

// RecordAuthFailure counts a rejected admin request.
func RecordAuthFailure() { globalManager.RecordAuthFailure() }

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
