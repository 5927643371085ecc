// Package metrics provides Prometheus metrics for the xpoints engine.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service reports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Scoring
	recordsScored  prometheus.Counter
	recordsSkipped *prometheus.CounterVec
	scoringLatency prometheus.Histogram
	defensiveAward prometheus.Counter
	bonusAwards    *prometheus.CounterVec
	resultsCurrent prometheus.Gauge

	// Analysis runs
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram

	// Export
	exportRows   *prometheus.CounterVec
	exportErrors *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // exposed through GetRegistry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "xpoints",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsScored = auto.NewCounter(m.counterOpts("records_scored_total", "Player-match records scored"))
	m.recordsSkipped = auto.NewCounterVec(m.counterOpts("records_skipped_total", "Records dropped before scoring"), []string{"reason"})
	m.scoringLatency = auto.NewHistogram(m.histogramOpts("scoring_latency_milliseconds", "Time to score one record in milliseconds"))
	m.defensiveAward = auto.NewCounter(m.counterOpts("defensive_awards_total", "Records awarded defensive contribution points"))
	m.bonusAwards = auto.NewCounterVec(m.counterOpts("bonus_awards_total", "Estimated bonus awards by points"), []string{"points"})
	m.resultsCurrent = auto.NewGauge(m.gaugeOpts("results_current", "Results held by the latest analysis"))

	m.analyses = auto.NewCounterVec(m.counterOpts("analyses_total", "Analysis runs by outcome"), []string{"status"})
	m.analysisDuration = auto.NewHistogram(m.histogramOpts("analysis_duration_seconds", "Wall time of an analysis run in seconds"))

	m.exportRows = auto.NewCounterVec(m.counterOpts("export_rows_total", "Rows written by export sink"), []string{"sink"})
	m.exportErrors = auto.NewCounterVec(m.counterOpts("export_errors_total", "Failed exports by sink"), []string{"sink"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the scoring queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the scoring queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the scoring queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs rejected by the scoring queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Workers in the scoring pool"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time a worker spends on one job in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs a worker failed to score"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// RecordRecordScored increments the scored records counter.
func RecordRecordScored() { globalManager.recordsScored.Inc() }

// RecordRecordsSkipped adds n to the skipped counter for reason.
func RecordRecordsSkipped(reason string, n int) {
	globalManager.recordsSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordDefensiveAward counts a defensive contribution award.
func RecordDefensiveAward() { globalManager.defensiveAward.Inc() }

// RecordBonusAward counts one estimated bonus award. Zero awards are ignored.
func RecordBonusAward(points int) {
	if points <= 0 {
		return
	}
	globalManager.bonusAwards.WithLabelValues(strconv.Itoa(points)).Inc()
}

// UpdateResultsCurrent sets the size of the latest report.
func UpdateResultsCurrent(n int) { globalManager.resultsCurrent.Set(float64(n)) }

// RecordAnalysis records one analysis run.
func RecordAnalysis(status string, d time.Duration) {
	globalManager.analyses.WithLabelValues(status).Inc()
	globalManager.analysisDuration.Observe(d.Seconds())
}

// RecordExportRows adds n rows for sink.
func RecordExportRows(sink string, n int) {
	globalManager.exportRows.WithLabelValues(sink).Add(float64(n))
}

// RecordExportError counts a failed export for sink.
func RecordExportError(sink string) { globalManager.exportErrors.WithLabelValues(sink).Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry behind the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Families returns the names of the metric families currently registered.
func Families() ([]string, error) {
	mfs, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotGathered, err)
	}
	out := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		out = append(out, mf.GetName())
	}
	return out, nil
}
