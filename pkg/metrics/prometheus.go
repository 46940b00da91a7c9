// Package metrics provides Prometheus metrics for the TASSIBETS service.
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

	// Submission metrics
	wagersPlaced      *prometheus.CounterVec
	wagerAmount       *prometheus.CounterVec
	wagerRejections   *prometheus.CounterVec
	jackpotsRecorded  *prometheus.CounterVec
	jackpotRejections *prometheus.CounterVec

	// View model metrics
	viewRefreshes      *prometheus.CounterVec
	viewRefreshErrors  *prometheus.CounterVec
	viewRefreshLatency *prometheus.HistogramVec
	viewDiscarded      *prometheus.CounterVec
	activeViews        *prometheus.GaugeVec
	viewRecords        *prometheus.GaugeVec

	// Change feed metrics
	feedNotifications   *prometheus.CounterVec
	feedSubscribeErrors *prometheus.CounterVec
	feedReconnects      prometheus.Counter

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	liveConnections     prometheus.Gauge

	// Games
	gameRounds *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System metrics
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
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tassibets",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.wagersPlaced = m.counterVec("wagers_placed_total", "Total number of accepted wagers by category", "category")
	m.wagerAmount = m.counterVec("wager_amount_total", "Sum of accepted wager amounts by category", "category")
	m.wagerRejections = m.counterVec("wager_rejections_total", "Rejected wager submissions by reason", "reason")
	m.jackpotsRecorded = m.counterVec("jackpots_recorded_total", "Total number of recorded jackpots by kind", "kind")
	m.jackpotRejections = m.counterVec("jackpot_rejections_total", "Rejected jackpot submissions by reason", "reason")

	m.viewRefreshes = m.counterVec("view_refreshes_total", "Completed view refreshes", "view")
	m.viewRefreshErrors = m.counterVec("view_refresh_errors_total", "Failed view refreshes (stale view kept)", "view")
	m.viewRefreshLatency = m.histogramVec("view_refresh_latency_milliseconds", "Full pull plus aggregation latency in milliseconds", "view")
	m.viewDiscarded = m.counterVec("view_discarded_results_total", "Pull results dropped because the view was torn down", "view")
	m.activeViews = m.gaugeVec("active_views", "Currently active view instances", "view")
	m.viewRecords = m.gaugeVec("view_records", "Records folded by the last refresh", "view")

	m.feedNotifications = m.counterVec("feed_notifications_total", "Change notifications delivered by collection", "collection")
	m.feedSubscribeErrors = m.counterVec("feed_subscribe_errors_total", "Failed change feed registrations by collection", "collection")
	m.feedReconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_reconnects_total",
		Help:      "Change feed listener reconnect attempts",
	})

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Event store call latency in milliseconds", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Event store call failures", "op")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.liveConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_connections",
		Help:      "Open live websocket connections",
	})

	m.gameRounds = m.counterVec("game_rounds_total", "Mini-game rounds by game and outcome", "game", "outcome")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and error type",
		"component", "error_type")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current system memory usage in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "Histogram of garbage collection pause times in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Submission Metrics Functions.

// RecordWagerPlaced counts an accepted wager and its amount.
func RecordWagerPlaced(category string, amount float64) {
	globalManager.wagersPlaced.WithLabelValues(category).Inc()
	globalManager.wagerAmount.WithLabelValues(category).Add(amount)
}

// RecordWagerRejected counts a rejected wager submission.
func RecordWagerRejected(reason string) {
	globalManager.wagerRejections.WithLabelValues(reason).Inc()
}

// RecordJackpotRecorded counts a stored jackpot.
func RecordJackpotRecorded(kind string) {
	globalManager.jackpotsRecorded.WithLabelValues(kind).Inc()
}

// RecordJackpotRejected counts a rejected jackpot submission.
func RecordJackpotRejected(reason string) {
	globalManager.jackpotRejections.WithLabelValues(reason).Inc()
}

// View Metrics Functions.

// RecordViewRefresh records a completed refresh of view.
func RecordViewRefresh(view string, latencyMs float64, records int) {
	globalManager.viewRefreshes.WithLabelValues(view).Inc()
	globalManager.viewRefreshLatency.WithLabelValues(view).Observe(latencyMs)
	globalManager.viewRecords.WithLabelValues(view).Set(float64(records))
}

// RecordViewRefreshError records a failed refresh of view.
func RecordViewRefreshError(view string) {
	globalManager.viewRefreshErrors.WithLabelValues(view).Inc()
}

// RecordViewDiscarded records a result dropped after teardown.
func RecordViewDiscarded(view string) {
	globalManager.viewDiscarded.WithLabelValues(view).Inc()
}

// IncActiveViews marks a view instance as active.
func IncActiveViews(view string) {
	globalManager.activeViews.WithLabelValues(view).Inc()
}

// DecActiveViews marks a view instance as torn down.
func DecActiveViews(view string) {
	globalManager.activeViews.WithLabelValues(view).Dec()
}

// Feed Metrics Functions.

// RecordFeedNotification counts a change notification for collection.
func RecordFeedNotification(collection string) {
	globalManager.feedNotifications.WithLabelValues(collection).Inc()
}

// RecordFeedSubscribeError counts a failed change feed registration.
func RecordFeedSubscribeError(collection string) {
	globalManager.feedSubscribeErrors.WithLabelValues(collection).Inc()
}

// RecordFeedReconnect counts a listener reconnect attempt.
func RecordFeedReconnect() {
	globalManager.feedReconnects.Inc()
}

// Store Metrics Functions.

// RecordStoreLatency records the latency of one store call.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
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

// IncLiveConnections marks a live socket as open.
func IncLiveConnections() { globalManager.liveConnections.Inc() }

// DecLiveConnections marks a live socket as closed.
func DecLiveConnections() { globalManager.liveConnections.Dec() }

// RecordGameRound counts one mini-game round.
func RecordGameRound(game, outcome string) {
	globalManager.gameRounds.WithLabelValues(game, outcome).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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
