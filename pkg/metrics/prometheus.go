// Package metrics provides Prometheus metrics for the lookbook recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default histogram buckets, in milliseconds.
var (
	defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // read-only defaults
	defaultOracleBuckets  = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}     //nolint:gochecknoglobals // read-only defaults
)

// Breaker state values exported by UpdateBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager manages all Prometheus metrics for the lookbook service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	oracleBuckets  []float64
	constLabels    map[string]string
	metricPrefix   string
	registry       prometheus.Registerer

	// Recommendation metrics
	recommendations       *prometheus.CounterVec
	recommendationResults *prometheus.CounterVec
	fallbackTopUps        prometheus.Counter
	recommendLatency      prometheus.Histogram

	// Image resolution metrics
	imageResolutions *prometheus.CounterVec

	// Oracle metrics
	oracleRequests *prometheus.CounterVec
	oracleLatency  prometheus.Histogram
	breakerState   *prometheus.GaugeVec
	labelCache     *prometheus.CounterVec

	// Loaded data
	corpusPairs     *prometheus.GaugeVec
	imageIndexRows  prometheus.Gauge
	modelGenders    prometheus.Gauge
	loadDurationsMs *prometheus.HistogramVec

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System performance metrics
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
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "lookbook",
		subsystem:      "recommender",
		latencyBuckets: defaultLatencyBuckets,
		oracleBuckets:  defaultOracleBuckets,
		constLabels:    make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recommendations = auto.NewCounterVec(
		m.counterOpts("recommendations_total", "Recommendation requests by gender and outcome"),
		[]string{"gender", "outcome"},
	)
	m.recommendationResults = auto.NewCounterVec(
		m.counterOpts("recommendation_results_total", "Recommended items by score source"),
		[]string{"score_source"},
	)
	m.fallbackTopUps = auto.NewCounter(
		m.counterOpts("fallback_topups_total", "Requests where the fallback scorer contributed results"),
	)
	m.recommendLatency = auto.NewHistogram(
		m.histogramOpts("recommend_latency_milliseconds", "Recommendation latency in milliseconds, oracle excluded", m.latencyBuckets),
	)

	m.imageResolutions = auto.NewCounterVec(
		m.counterOpts("image_resolutions_total", "Image lookups by matched cascade tier (miss when none)"),
		[]string{"tier"},
	)

	m.oracleRequests = auto.NewCounterVec(
		m.counterOpts("oracle_requests_total", "Label oracle calls by result"),
		[]string{"result"},
	)
	m.oracleLatency = auto.NewHistogram(
		m.histogramOpts("oracle_latency_milliseconds", "Label oracle round trip in milliseconds",
			m.oracleBuckets),
	)
	m.breakerState = auto.NewGaugeVec(
		m.gaugeOpts("breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)"),
		[]string{"name"},
	)

	m.labelCache = auto.NewCounterVec(
		m.counterOpts("label_cache_lookups_total", "Label cache lookups by result (hit, miss)"),
		[]string{"result"},
	)

	m.corpusPairs = auto.NewGaugeVec(
		m.gaugeOpts("corpus_pairs", "Outfit pairs loaded per gender"),
		[]string{"gender"},
	)
	m.imageIndexRows = auto.NewGauge(
		m.gaugeOpts("image_index_rows", "Rows loaded into the image index"),
	)
	m.modelGenders = auto.NewGauge(
		m.gaugeOpts("model_genders", "Number of per-gender models built"),
	)
	m.loadDurationsMs = auto.NewHistogramVec(
		m.histogramOpts("load_duration_milliseconds", "Startup load duration in milliseconds", m.latencyBuckets),
		[]string{"source"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordRecommendation counts a recommendation request by gender and outcome.
func RecordRecommendation(gender, outcome string) {
	globalManager.recommendations.WithLabelValues(gender, outcome).Inc()
}

// RecordRecommendationResults counts n recommended items from one score source.
func RecordRecommendationResults(source string, n int) {
	if n <= 0 {
		return
	}
	globalManager.recommendationResults.WithLabelValues(source).Add(float64(n))
}

// RecordFallbackTopUp counts a request completed by the fallback scorer.
func RecordFallbackTopUp() {
	globalManager.fallbackTopUps.Inc()
}

// RecordRecommendLatency records recommendation latency in milliseconds.
func RecordRecommendLatency(latencyMs float64) {
	globalManager.recommendLatency.Observe(latencyMs)
}

// RecordImageResolution counts an image lookup by tier. An empty tier counts as a miss.
func RecordImageResolution(tier string) {
	if tier == "" {
		tier = "miss"
	}
	globalManager.imageResolutions.WithLabelValues(tier).Inc()
}

// RecordOracleRequest counts a label oracle call by result (ok, error, open).
func RecordOracleRequest(result string) {
	globalManager.oracleRequests.WithLabelValues(result).Inc()
}

// RecordOracleLatency records the oracle round trip in milliseconds.
func RecordOracleLatency(latencyMs float64) {
	globalManager.oracleLatency.Observe(latencyMs)
}

// RecordLabelCache counts a label cache lookup.
func RecordLabelCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.labelCache.WithLabelValues(result).Inc()
}

// UpdateBreakerState sets the state gauge of the named circuit breaker.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// UpdateCorpusPairs sets the number of pairs loaded for a gender.
func UpdateCorpusPairs(gender string, count int) {
	globalManager.corpusPairs.WithLabelValues(gender).Set(float64(count))
}

// UpdateImageIndexRows sets the number of image index rows loaded.
func UpdateImageIndexRows(count int) {
	globalManager.imageIndexRows.Set(float64(count))
}

// UpdateModelGenders sets the number of per-gender models.
func UpdateModelGenders(count int) {
	globalManager.modelGenders.Set(float64(count))
}

// RecordLoadDuration records how long loading a startup source took.
func RecordLoadDuration(source string, latencyMs float64) {
	globalManager.loadDurationsMs.WithLabelValues(source).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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
