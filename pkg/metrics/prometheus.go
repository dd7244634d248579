// Package metrics provides Prometheus metrics for the hireloop pipeline core.
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

// Manager manages all Prometheus metrics for the pipeline core.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Mutation protocol metrics - the heart of the service
	mutationsStarted    prometheus.Counter
	mutationsCommitted  prometheus.Counter
	mutationsRolledBack prometheus.Counter
	mutationsBusy       prometheus.Counter

	// Remote authority metrics
	remoteLatency  prometheus.Histogram
	remoteFailures *prometheus.CounterVec

	// Domain state gauges
	boardSize      prometheus.Gauge
	candidateCount prometheus.Gauge
	historyAppends *prometheus.CounterVec

	// Journal metrics
	journalQueueSize   prometheus.Gauge
	journalWrites      prometheus.Counter
	journalWriteErrors prometheus.Counter
	journalDropped     prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "hireloop",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
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
	auto := promauto.With(m.registry)

	m.mutationsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_started_total",
		Help:      "Total number of optimistic mutations that passed the in-flight check",
	})

	m.mutationsCommitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_committed_total",
		Help:      "Total number of mutations reconciled and committed",
	})

	m.mutationsRolledBack = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_rolled_back_total",
		Help:      "Total number of mutations rolled back after a remote failure",
	})

	m.mutationsBusy = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_busy_total",
		Help:      "Total number of mutations rejected because one was already in flight",
	})

	m.remoteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_latency_milliseconds",
		Help:      "Histogram of remote authority call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.remoteFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "remote_failures_total",
			Help:      "Total number of remote authority failures by taxonomy class",
		},
		[]string{"class"},
	)

	m.boardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "board_size",
		Help:      "Number of active jobs participating in the board ordering",
	})

	m.candidateCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidate_count",
		Help:      "Number of candidates tracked in the pipeline",
	})

	m.historyAppends = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "history_appends_total",
			Help:      "Total number of pipeline history entries appended by kind",
		},
		[]string{"kind"},
	)

	m.journalQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_queue_size",
		Help:      "Current number of queued journal writes",
	})

	m.journalWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_writes_total",
		Help:      "Total number of documents written through the journal",
	})

	m.journalWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_write_errors_total",
		Help:      "Total number of journal writes that failed at the document store",
	})

	m.journalDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_dropped_total",
		Help:      "Total number of journal writes dropped because the queue was full",
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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Mutation metrics.

// RecordMutationStarted increments the started-mutation counter.
func RecordMutationStarted() {
	globalManager.mutationsStarted.Inc()
}

// RecordMutationCommitted increments the committed-mutation counter.
func RecordMutationCommitted() {
	globalManager.mutationsCommitted.Inc()
}

// RecordMutationRolledBack increments the rollback counter.
func RecordMutationRolledBack() {
	globalManager.mutationsRolledBack.Inc()
}

// RecordMutationBusy increments the busy-rejection counter.
func RecordMutationBusy() {
	globalManager.mutationsBusy.Inc()
}

// Remote authority metrics.

// RecordRemoteLatency observes one remote call duration in milliseconds.
func RecordRemoteLatency(latencyMs float64) {
	globalManager.remoteLatency.Observe(latencyMs)
}

// RecordRemoteFailure counts one classified remote failure.
func RecordRemoteFailure(class string) {
	globalManager.remoteFailures.WithLabelValues(class).Inc()
}

// Domain state metrics.

// UpdateBoardSize sets the active-job gauge.
func UpdateBoardSize(n int) {
	globalManager.boardSize.Set(float64(n))
}

// UpdateCandidateCount sets the tracked-candidate gauge.
func UpdateCandidateCount(n int) {
	globalManager.candidateCount.Set(float64(n))
}

// RecordHistoryAppend counts one history append by entry kind.
func RecordHistoryAppend(kind string) {
	globalManager.historyAppends.WithLabelValues(kind).Inc()
}

// Journal metrics.

// UpdateJournalQueueSize sets the queued-write gauge.
func UpdateJournalQueueSize(n int) {
	globalManager.journalQueueSize.Set(float64(n))
}

// RecordJournalWrite counts one successful journal write.
func RecordJournalWrite() {
	globalManager.journalWrites.Inc()
}

// RecordJournalWriteError counts one failed journal write.
func RecordJournalWriteError() {
	globalManager.journalWriteErrors.Inc()
}

// RecordJournalDropped counts one write dropped on a full queue.
func RecordJournalDropped() {
	globalManager.journalDropped.Inc()
}

// HTTP metrics.

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for the metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
