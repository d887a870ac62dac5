// Package metrics provides Prometheus metrics for the recap report service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the recap service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset loading
	datasetLoads       *prometheus.CounterVec
	datasetLoadLatency *prometheus.HistogramVec
	datasetRows        *prometheus.GaugeVec

	// Session cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge
	cacheResets  prometheus.Counter

	// Series reconstruction
	reconstructLatency *prometheus.HistogramVec
	seriesDays         prometheus.Gauge
	seriesFilledDays   prometheus.Gauge

	// Report sections
	sectionBuilds  *prometheus.CounterVec
	sectionErrors  *prometheus.CounterVec
	exportsTotal   prometheus.Counter
	exportRowCount prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recap",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
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
	labels := prometheus.Labels(m.constLabels)

	m.datasetLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_loads_total",
		Help:        "Dataset load attempts by dataset and outcome",
		ConstLabels: labels,
	}, []string{"dataset", "result"})

	m.datasetLoadLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_load_latency_milliseconds",
		Help:        "Time to discover and parse a dataset file",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"dataset"})

	m.datasetRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_rows",
		Help:        "Data rows in the most recently loaded copy of a dataset",
		ConstLabels: labels,
	}, []string{"dataset"})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_hits_total",
		Help:        "Dataset requests served from the session cache",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_misses_total",
		Help:        "Dataset requests that required reading the file",
		ConstLabels: labels,
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_entries",
		Help:        "Datasets currently held by the session cache",
		ConstLabels: labels,
	})

	m.cacheResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_resets_total",
		Help:        "Explicit session cache invalidations",
		ConstLabels: labels,
	})

	m.reconstructLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reconstruct_latency_milliseconds",
		Help:        "Series reconstruction latency by fill policy",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"policy"})

	m.seriesDays = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "series_days",
		Help:        "Days in the last reconstructed member series",
		ConstLabels: labels,
	})

	m.seriesFilledDays = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "series_filled_days",
		Help:        "Days without an observation in the last reconstructed member series",
		ConstLabels: labels,
	})

	m.sectionBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "section_builds_total",
		Help:        "Report section builds by section",
		ConstLabels: labels,
	}, []string{"section"})

	m.sectionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "section_errors_total",
		Help:        "Report section failures by section and error kind",
		ConstLabels: labels,
	}, []string{"section", "kind"})

	m.exportsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exports_total",
		Help:        "Spreadsheet exports produced",
		ConstLabels: labels,
	})

	m.exportRowCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_rows",
		Help:        "Data rows written by the last spreadsheet export",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Errors by type and severity",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Errors by endpoint, method and type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Dataset Metrics Functions.

// RecordDatasetLoad counts a load attempt; result is "ok" or an error kind.
func RecordDatasetLoad(dataset, result string) {
	globalManager.datasetLoads.WithLabelValues(dataset, result).Inc()
}

// RecordDatasetLoadLatency records how long a dataset took to load.
func RecordDatasetLoadLatency(dataset string, latencyMs float64) {
	globalManager.datasetLoadLatency.WithLabelValues(dataset).Observe(latencyMs)
}

// UpdateDatasetRows sets the row count of a freshly loaded dataset.
func UpdateDatasetRows(dataset string, rows int) {
	globalManager.datasetRows.WithLabelValues(dataset).Set(float64(rows))
}

// Cache Metrics Functions.

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheEntries sets the number of cached datasets.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// RecordCacheReset increments the cache reset counter.
func RecordCacheReset() {
	globalManager.cacheResets.Inc()
}

// Series Metrics Functions.

// RecordReconstructLatency records reconstruction latency for a policy.
func RecordReconstructLatency(policy string, latencyMs float64) {
	globalManager.reconstructLatency.WithLabelValues(policy).Observe(latencyMs)
}

// UpdateSeriesShape sets the size of the last reconstructed series.
func UpdateSeriesShape(days, filled int) {
	globalManager.seriesDays.Set(float64(days))
	globalManager.seriesFilledDays.Set(float64(filled))
}

// Section Metrics Functions.

// RecordSectionBuild counts a section build attempt.
func RecordSectionBuild(section string) {
	globalManager.sectionBuilds.WithLabelValues(section).Inc()
}

// RecordSectionError counts a failed section.
func RecordSectionError(section, kind string) {
	globalManager.sectionErrors.WithLabelValues(section, kind).Inc()
}

// RecordExport counts a spreadsheet export and its row count.
func RecordExport(rows int) {
	globalManager.exportsTotal.Inc()
	globalManager.exportRowCount.Set(float64(rows))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
