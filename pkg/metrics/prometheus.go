// Package metrics provides Prometheus metrics for the matchrank service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Pipeline stage labels used with RecordStageDuration.
const (
	StageEncode   = "encode"
	StageRetrieve = "retrieve"
	StageEnrich   = "enrich"
	StageScore    = "score"
)

// Manager manages all Prometheus metrics for the matchrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer
	customLabels     map[string]string
	metricPrefix     string

	// Core Business Metrics - What matters for a matchmaking pipeline
	searchesTotal      prometheus.Counter
	noCandidatesTotal  prometheus.Counter
	candidatesReturned prometheus.Histogram
	pipelineDuration   prometheus.Histogram
	stageDuration      *prometheus.HistogramVec

	// Collaborator Metrics - External round trips
	embeddingCacheHits   prometheus.Counter
	embeddingCacheMisses prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics - Detailed error tracking
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewMetricsManager(WithPrometheusRegistry(customRegistry))
}

// NewMetricsManager creates a new metrics manager with default configuration.
func NewMetricsManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchrank",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	reg := m.registry
	if m.metricPrefix != "" {
		reg = prometheus.WrapRegistererWithPrefix(m.metricPrefix, reg)
	}
	if len(m.customLabels) > 0 {
		reg = prometheus.WrapRegistererWith(prometheus.Labels(m.customLabels), reg)
	}
	auto := promauto.With(reg)

	m.searchesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_total",
		Help:      "Total number of candidate searches executed",
	})

	m.noCandidatesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_no_candidates_total",
		Help:      "Total number of searches that found no compatible candidates",
	})

	m.candidatesReturned = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_returned",
		Help:      "Number of candidates returned per successful search",
		Buckets:   prometheus.LinearBuckets(0, 2, 11),
	})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duration_milliseconds",
		Help:      "End-to-end pipeline duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_milliseconds",
			Help:      "Per-stage pipeline duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.embeddingCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_cache_hits_total",
		Help:      "Total number of embedding cache hits",
	})

	m.embeddingCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_cache_misses_total",
		Help:      "Total number of embedding cache misses",
	})

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
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of failed operations in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used by the global
// manager, for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordSearch counts one executed candidate search.
func RecordSearch() {
	if globalManager.enabled {
		globalManager.searchesTotal.Inc()
	}
}

// RecordNoCandidates counts a search that came back empty.
func RecordNoCandidates() {
	if globalManager.enabled {
		globalManager.noCandidatesTotal.Inc()
	}
}

// RecordCandidatesReturned observes the size of a successful result.
func RecordCandidatesReturned(n int) {
	if globalManager.enabled {
		globalManager.candidatesReturned.Observe(float64(n))
	}
}

// RecordPipelineDuration observes end-to-end pipeline latency.
func RecordPipelineDuration(ms float64) {
	if globalManager.enabled {
		globalManager.pipelineDuration.Observe(ms)
	}
}

// RecordStageDuration observes one pipeline stage's latency.
func RecordStageDuration(stage string, ms float64) {
	if globalManager.enabled {
		globalManager.stageDuration.WithLabelValues(stage).Observe(ms)
	}
}

// RecordEmbeddingCacheHit counts an embedding served from cache.
func RecordEmbeddingCacheHit() {
	if globalManager.enabled {
		globalManager.embeddingCacheHits.Inc()
	}
}

// RecordEmbeddingCacheMiss counts an embedding that had to be computed.
func RecordEmbeddingCacheMiss() {
	if globalManager.enabled {
		globalManager.embeddingCacheMisses.Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request's latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
	}
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint counts an error on an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, ms float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(ms)
	}
}

// UpdateSystemMemoryUsage updates the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(ms)
	}
}
