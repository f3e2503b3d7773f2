package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trade_signals"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Signal metrics
	SignalRequestsTotal *prometheus.CounterVec
	SignalDuration      *prometheus.HistogramVec
	SignalErrorsTotal   *prometheus.CounterVec
	FinalSignalsTotal   *prometheus.CounterVec

	// Sentiment cache and budget metrics
	CacheRequestsTotal  *prometheus.CounterVec
	CacheEntries        *prometheus.GaugeVec
	BudgetCallsToday    prometheus.Gauge
	CommentaryOutcomes  *prometheus.CounterVec
	PositiveRatioValues prometheus.Histogram

	// Ranker metrics
	RankerRunsTotal    *prometheus.CounterVec
	RankerSkippedTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Store metrics
	StoreOpDuration  *prometheus.HistogramVec
	StoreOpsTotal    *prometheus.CounterVec
	StoreErrorsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// ratioBuckets are histogram buckets for sentiment ratios (0 to 1)
var ratioBuckets = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1}

var (
	globalMetrics *Metrics
	metricsMu     sync.Mutex
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Signal metrics
		SignalRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signal",
				Name:      "requests_total",
				Help:      "Total number of signal computations",
			},
			[]string{"asset_class"},
		),
		SignalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "signal",
				Name:      "duration_seconds",
				Help:      "Duration of signal computation in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"asset_class", "status"},
		),
		SignalErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signal",
				Name:      "errors_total",
				Help:      "Total number of failed signal computations",
			},
			[]string{"asset_class", "error_type"},
		),
		FinalSignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signal",
				Name:      "final_total",
				Help:      "Total number of final signals by value",
			},
			[]string{"asset_class", "signal"},
		),

		// Sentiment cache and budget metrics
		CacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "Total number of cache lookups by result",
			},
			[]string{"cache", "result"},
		),
		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Number of entries currently held in memory",
			},
			[]string{"cache"},
		),
		BudgetCallsToday: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "calls_today",
				Help:      "Commentary calls consumed in the current budget day",
			},
		),
		CommentaryOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "commentary",
				Name:      "outcomes_total",
				Help:      "Commentary requests by outcome",
			},
			[]string{"status"},
		),
		PositiveRatioValues: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "sentiment",
				Name:      "positive_ratio",
				Help:      "Distribution of positive sentiment ratios",
				Buckets:   ratioBuckets,
			},
		),

		// Ranker metrics
		RankerRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ranker",
				Name:      "runs_total",
				Help:      "Total number of ranking runs",
			},
			[]string{"asset_class", "mode", "degraded"},
		),
		RankerSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ranker",
				Name:      "skipped_total",
				Help:      "Symbols skipped during ranking because of errors",
			},
			[]string{"asset_class", "error_type"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// Store metrics
		StoreOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of store operations in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"backend", "operation"},
		),
		StoreOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"backend", "operation"},
		),
		StoreErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Total number of store errors",
			},
			[]string{"backend", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// SetMetrics replaces the global metrics instance (used by tests with a private registry)
func SetMetrics(m *Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// GetMetrics returns the global metrics instance, registering it on first use
func GetMetrics() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(nil)
	}
	return globalMetrics
}

// RecordSignalRequest records a signal computation request
func (m *Metrics) RecordSignalRequest(assetClass string) {
	m.SignalRequestsTotal.WithLabelValues(assetClass).Inc()
}

// RecordSignalDuration records the duration of a signal computation
func (m *Metrics) RecordSignalDuration(assetClass, status string, duration time.Duration) {
	m.SignalDuration.WithLabelValues(assetClass, status).Observe(duration.Seconds())
}

// RecordSignalError records a failed signal computation
func (m *Metrics) RecordSignalError(assetClass, errorType string) {
	m.SignalErrorsTotal.WithLabelValues(assetClass, errorType).Inc()
}

// RecordFinalSignal records the final signal produced for a symbol
func (m *Metrics) RecordFinalSignal(assetClass, signal string) {
	m.FinalSignalsTotal.WithLabelValues(assetClass, signal).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheRequestsTotal.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheRequestsTotal.WithLabelValues(cache, "miss").Inc()
}

// SetCacheEntries sets the in-memory size of a cache
func (m *Metrics) SetCacheEntries(cache string, n int) {
	m.CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// SetBudgetCallsToday sets the number of commentary calls consumed today
func (m *Metrics) SetBudgetCallsToday(n int) {
	m.BudgetCallsToday.Set(float64(n))
}

// RecordCommentaryOutcome records how a commentary request was resolved
func (m *Metrics) RecordCommentaryOutcome(status string) {
	m.CommentaryOutcomes.WithLabelValues(status).Inc()
}

// RecordPositiveRatio records an aggregated positive sentiment ratio
func (m *Metrics) RecordPositiveRatio(ratio float64) {
	m.PositiveRatioValues.Observe(ratio)
}

// RecordRankerRun records a completed ranking run
func (m *Metrics) RecordRankerRun(assetClass, mode string, degraded bool) {
	d := "false"
	if degraded {
		d = "true"
	}
	m.RankerRunsTotal.WithLabelValues(assetClass, mode, d).Inc()
}

// RecordRankerSkip records a symbol dropped from a ranking run
func (m *Metrics) RecordRankerSkip(assetClass, errorType string) {
	m.RankerSkippedTotal.WithLabelValues(assetClass, errorType).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordStoreOp records a store operation
func (m *Metrics) RecordStoreOp(backend, operation string, duration time.Duration) {
	m.StoreOpsTotal.WithLabelValues(backend, operation).Inc()
	m.StoreOpDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordStoreError records a store error
func (m *Metrics) RecordStoreError(backend, operation string) {
	m.StoreErrorsTotal.WithLabelValues(backend, operation).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveSignal records the signal computation duration and status
func (t *Timer) ObserveSignal(assetClass, status string) {
	t.metrics.RecordSignalDuration(assetClass, status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveStore records the store operation duration
func (t *Timer) ObserveStore(backend, operation string) {
	t.metrics.RecordStoreOp(backend, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
