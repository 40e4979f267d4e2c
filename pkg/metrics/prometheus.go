// Package metrics provides Prometheus metrics for the glyco predictor.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Artifact names used with RecordArtifactLoad.
const (
	ArtifactReferenceData = "reference_data"
	ArtifactModel         = "model"
)

// Manager owns the predictor's Prometheus collectors.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	displayScore      prometheus.Histogram

	// Batch screening metrics
	screeningRuns prometheus.Counter
	screeningRows *prometheus.CounterVec

	// Artifact metrics
	artifactLoaded *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "glyco",
		subsystem:      "predictor",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		registry:       prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "predictions_total",
		Help:        "Total number of completed predictions by decision label and risk level",
		ConstLabels: m.constLabels,
	}, []string{"label", "level"})

	m.predictionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "prediction_errors_total",
		Help:        "Total number of failed predictions by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "prediction_latency_milliseconds",
		Help:        "Histogram of end-to-end prediction latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	})

	m.displayScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "display_score",
		Help:        "Distribution of calibrated 0-100 display scores",
		Buckets:     prometheus.LinearBuckets(10, 10, 9),
		ConstLabels: m.constLabels,
	})

	m.screeningRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "screening_runs_total",
		Help:        "Total number of batch screening runs",
		ConstLabels: m.constLabels,
	})

	m.screeningRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "screening_rows_total",
		Help:        "Total number of batch screening rows by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.artifactLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "artifact_loaded",
		Help:        "1 when the artifact loaded successfully, 0 when loading failed",
		ConstLabels: m.constLabels,
	}, []string{"artifact"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordPrediction counts a completed prediction.
func (m *Manager) RecordPrediction(positive bool, level string, score, latencyMs float64) {
	label := "negative"
	if positive {
		label = "positive"
	}
	m.predictions.WithLabelValues(label, level).Inc()
	m.displayScore.Observe(score)
	m.predictionLatency.Observe(latencyMs)
}

// RecordPredictionError counts a failed prediction.
func (m *Manager) RecordPredictionError(kind string) {
	m.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordScreening counts a batch run and its row outcomes.
func (m *Manager) RecordScreening(scored, failed int) {
	m.screeningRuns.Inc()
	m.screeningRows.WithLabelValues("scored").Add(float64(scored))
	m.screeningRows.WithLabelValues("failed").Add(float64(failed))
}

// RecordArtifactLoad sets the load status of an artifact.
func (m *Manager) RecordArtifactLoad(artifact string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	m.artifactLoaded.WithLabelValues(artifact).Set(v)
}

// RecordHTTPRequest counts a request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Global shortcuts.

// RecordPrediction records on the global manager.
func RecordPrediction(positive bool, level string, score, latencyMs float64) {
	globalManager.RecordPrediction(positive, level, score, latencyMs)
}

// RecordPredictionError records on the global manager.
func RecordPredictionError(kind string) { globalManager.RecordPredictionError(kind) }

// RecordScreening records on the global manager.
func RecordScreening(scored, failed int) { globalManager.RecordScreening(scored, failed) }

// RecordArtifactLoad records on the global manager.
func RecordArtifactLoad(artifact string, ok bool) { globalManager.RecordArtifactLoad(artifact, ok) }

// RecordHTTPRequest records on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards runtime collector registration

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. It is safe to call more than once.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
