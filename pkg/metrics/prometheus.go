// Package metrics provides Prometheus metrics for the scoreview viewer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for fetch metrics.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Manager owns every collector exported by the viewer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Backend API
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec

	// Response cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Fetch coordinator
	fetchSubmitted prometheus.Counter
	fetchCoalesced prometheus.Counter
	fetchIssued    *prometheus.CounterVec
	fetchShared    prometheus.Counter
	fetchStale     prometheus.Counter
	fetchSkipped   prometheus.Counter

	// Sessions
	sessionsActive  prometheus.Gauge
	sessionsOpened  prometheus.Counter
	mailboxRejected prometheus.Counter
	eventsApplied   *prometheus.CounterVec

	// Viewer HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoreview",
		subsystem:        "viewer",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.apiRequests = m.counterVec("api_requests_total", "Backend API requests by endpoint and outcome", "endpoint", "outcome")
	m.apiLatency = m.histogramVec("api_request_duration_milliseconds", "Backend API request latency", "endpoint")

	m.cacheHits = m.counter("cache_hits_total", "Response cache hits")
	m.cacheMisses = m.counter("cache_misses_total", "Response cache misses")

	m.fetchSubmitted = m.counter("fetch_submitted_total", "Query keys submitted to the settle timer")
	m.fetchCoalesced = m.counter("fetch_coalesced_total", "Submitted keys discarded by a newer submit before settling")
	m.fetchIssued = m.counterVec("fetch_issued_total", "Fetches dispatched by the coordinator per action", "action")
	m.fetchShared = m.counter("fetch_shared_total", "Fetches that joined an identical in-flight call")
	m.fetchStale = m.counter("fetch_stale_dropped_total", "Responses dropped because a newer fetch superseded them")
	m.fetchSkipped = m.counter("fetch_skipped_total", "Settled keys that needed no fetch")

	m.sessionsActive = m.gauge("sessions_active", "Live sessions currently mounted")
	m.sessionsOpened = m.counter("sessions_opened_total", "Live sessions mounted since start")
	m.mailboxRejected = m.counter("mailbox_rejected_total", "Session events rejected by a full mailbox")
	m.eventsApplied = m.counterVec("events_applied_total", "Session events applied by type", "type")

	m.httpRequests = m.counterVec("http_requests_total", "Viewer HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "Viewer HTTP request duration", "endpoint", "method", "status_code")

	m.systemMemory = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutines = m.gauge("system_goroutines", "Running goroutines")
	m.systemGCPause = m.gauge("system_gc_pause_milliseconds", "Average GC pause")
}

// RecordAPIRequest counts a backend call and observes its latency.
func RecordAPIRequest(endpoint, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.apiLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

// RecordFetchSubmitted counts a debounced submit.
func RecordFetchSubmitted() {
	if globalManager.enabled {
		globalManager.fetchSubmitted.Inc()
	}
}

// RecordFetchCoalesced counts a submit that was replaced before settling.
func RecordFetchCoalesced() {
	if globalManager.enabled {
		globalManager.fetchCoalesced.Inc()
	}
}

// RecordFetchIssued counts a dispatched fetch for action.
func RecordFetchIssued(action string) {
	if globalManager.enabled {
		globalManager.fetchIssued.WithLabelValues(action).Inc()
	}
}

// RecordFetchShared counts a fetch served by an identical in-flight call.
func RecordFetchShared() {
	if globalManager.enabled {
		globalManager.fetchShared.Inc()
	}
}

// RecordFetchStale counts a dropped out-of-date response.
func RecordFetchStale() {
	if globalManager.enabled {
		globalManager.fetchStale.Inc()
	}
}

// RecordFetchSkipped counts a settled key that needed no network call.
func RecordFetchSkipped() {
	if globalManager.enabled {
		globalManager.fetchSkipped.Inc()
	}
}

// SessionOpened tracks a mounted session.
func SessionOpened() {
	if globalManager.enabled {
		globalManager.sessionsOpened.Inc()
		globalManager.sessionsActive.Inc()
	}
}

// SessionClosed tracks an unmounted session.
func SessionClosed() {
	if globalManager.enabled {
		globalManager.sessionsActive.Dec()
	}
}

// RecordMailboxRejected counts an event refused by a full mailbox.
func RecordMailboxRejected() {
	if globalManager.enabled {
		globalManager.mailboxRejected.Inc()
	}
}

// RecordEventApplied counts an applied session event.
func RecordEventApplied(eventType string) {
	if globalManager.enabled {
		globalManager.eventsApplied.WithLabelValues(eventType).Inc()
	}
}

// RecordHTTPRequest records a viewer HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemory.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutines.Set(float64(count))
	}
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPause.Set(pauseMs)
	}
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
