// Package metrics provides Prometheus metrics for the FLPS scoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation outcomes used as the result label.
const (
	ResultEligible   = "eligible"
	ResultIneligible = "ineligible"
	ResultError      = "error"
)

// Manager manages all Prometheus metrics for the FLPS service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Scoring
	evaluations       *prometheus.CounterVec
	ineligible        *prometheus.CounterVec
	errors            *prometheus.CounterVec
	evaluationLatency prometheus.Histogram
	scores            prometheus.Histogram
	batchSize         prometheus.Histogram

	// Award ledger
	awardsRecorded prometheus.Counter
	awardsRevoked  prometheus.Counter

	// Guild configuration cache
	configCacheHits   prometheus.Counter
	configCacheMisses prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
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
		namespace:        "flps",
		subsystem:        "engine",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help, label string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, []string{label})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.evaluations = m.counterVec("evaluations_total", "Raider evaluations by outcome", "result")
	m.ineligible = m.counterVec("ineligible_total", "Ineligibility verdicts by reason", "reason")
	m.errors = m.counterVec("errors_total", "Evaluation failures by error kind", "kind")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds",
		"Histogram of single raider evaluation latency in milliseconds", m.histogramBuckets)
	m.scores = m.histogram("score", "Distribution of computed FLPS scores",
		prometheus.LinearBuckets(0.1, 0.1, 10))
	m.batchSize = m.histogram("batch_size", "Number of raiders per roster evaluation",
		prometheus.ExponentialBuckets(1, 2, 8))

	m.awardsRecorded = m.counter("awards_recorded_total", "Loot awards written to the ledger")
	m.awardsRevoked = m.counter("awards_revoked_total", "Loot awards revoked")

	m.configCacheHits = m.counter("config_cache_hits_total", "Guild configuration cache hits")
	m.configCacheMisses = m.counter("config_cache_misses_total", "Guild configuration cache misses")

	m.queueSize = m.gauge("queue_size", "Current number of jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total enqueue failures")

	m.workerCount = m.gauge("worker_count", "Number of evaluation workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently evaluating")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Histogram of worker job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that finished with an error")
}

// RecordEvaluation counts one evaluation outcome.
func RecordEvaluation(result string) {
	globalManager.evaluations.WithLabelValues(result).Inc()
}

// RecordIneligible counts one ineligibility reason.
func RecordIneligible(reason string) {
	globalManager.ineligible.WithLabelValues(reason).Inc()
}

// RecordError counts one evaluation failure of the given kind.
func RecordError(kind string) {
	globalManager.errors.WithLabelValues(kind).Inc()
}

// RecordEvaluationLatency records evaluation latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordScore observes a computed FLPS score.
func RecordScore(flps float64) {
	globalManager.scores.Observe(flps)
}

// RecordBatchSize observes the number of raiders in one roster evaluation.
func RecordBatchSize(size int) {
	globalManager.batchSize.Observe(float64(size))
}

// RecordAwardRecorded increments the recorded awards counter.
func RecordAwardRecorded() {
	globalManager.awardsRecorded.Inc()
}

// RecordAwardRevoked increments the revoked awards counter.
func RecordAwardRevoked() {
	globalManager.awardsRevoked.Inc()
}

// RecordConfigCacheHit increments the configuration cache hit counter.
func RecordConfigCacheHit() {
	globalManager.configCacheHits.Inc()
}

// RecordConfigCacheMiss increments the configuration cache miss counter.
func RecordConfigCacheMiss() {
	globalManager.configCacheMisses.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// GetRegistry returns the custom registry holding every FLPS metric.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
