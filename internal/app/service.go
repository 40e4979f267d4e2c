// Package service wires the prediction pipeline: reference statistics,
// feature encoding, model inference and display calibration.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/glyco/internal/domain/classifier"
	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/stats"
	"github.com/okian/glyco/pkg/logger"
	"github.com/okian/glyco/pkg/metrics"
)

// ParamsSource provides the standardization parameters.
type ParamsSource interface {
	Get(ctx context.Context) (stats.Params, error)
}

// Model provides inference over encoded vectors.
type Model interface {
	Load(ctx context.Context) (*classifier.Model, error)
	Schema(ctx context.Context) (features.Schema, error)
	PredictProba(ctx context.Context, v features.Vector) (float64, error)
	OddsRatios(ctx context.Context) (map[string]float64, error)
}

// Result is the outcome of one prediction.
type Result struct {
	// Probability is the raw positive-class probability.
	Probability float64 `json:"probability" yaml:"probability"`
	// Score is the calibrated 0-100 display value.
	Score float64 `json:"score" yaml:"score"`
	// Positive is Probability >= threshold.
	Positive   bool               `json:"positive" yaml:"positive"`
	Level      scoring.Level      `json:"risk_level" yaml:"risk_level"`
	OddsRatios map[string]float64 `json:"odds_ratios" yaml:"odds_ratios"`
}

// Service implements the API dependencies for the predictor.
type Service struct {
	mu sync.RWMutex

	// Core components
	params     ParamsSource
	model      Model
	calibrator *scoring.Calibrator

	// Configuration
	screeningWorkers int
	maxScreenRows    int

	// State
	started       bool
	modelVersion  string
	defaultSchema bool
	predictions  atomic.Int64
	failures     atomic.Int64
	screenings   atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatsStore sets the source of standardization parameters.
func WithStatsStore(p ParamsSource) Option {
	return func(s *Service) {
		if p != nil {
			s.params = p
		}
	}
}

// WithGateway sets the classifier.
func WithGateway(m Model) Option {
	return func(s *Service) {
		if m != nil {
			s.model = m
		}
	}
}

// WithCalibrator sets the display calibrator and with it the operating
// threshold.
func WithCalibrator(c *scoring.Calibrator) Option {
	return func(s *Service) {
		if c != nil {
			s.calibrator = c
		}
	}
}

// WithScreeningWorkers bounds concurrent scoring during screening.
func WithScreeningWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.screeningWorkers = n
		}
	}
}

// WithMaxScreenRows caps the rows accepted by a single screening run.
func WithMaxScreenRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxScreenRows = n
		}
	}
}

// New constructs a new Service. Without WithStatsStore and WithGateway every
// prediction fails with an initialization error.
func New(opts ...Option) *Service {
	calibrator, _ := scoring.NewCalibrator(scoring.DefaultThreshold)
	s := &Service{
		params:           stats.NewStore(nil),
		model:            classifier.NewGateway(nil),
		calibrator:       calibrator,
		screeningWorkers: runtime.NumCPU(),
		maxScreenRows:    10_000,
		logger:           logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads both artifacts. Predict loads them lazily when Start was not
// called; either way the first load result is final.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "loading prediction artifacts...")

	params, err := s.params.Get(ctx)
	metrics.RecordArtifactLoad(metrics.ArtifactReferenceData, err == nil)
	if err != nil {
		s.logger.Error(ctx, "reference data unavailable", logger.Error(err))
		return err
	}

	m, err := s.loadModel(ctx)
	metrics.RecordArtifactLoad(metrics.ArtifactModel, err == nil)
	if err != nil {
		s.logger.Error(ctx, "model unavailable", logger.Error(err))
		return err
	}

	schema, err := s.model.Schema(ctx)
	if err != nil {
		return err
	}
	missing, extra := schema.Diff(features.DefaultSchema())
	if len(missing) > 0 || len(extra) > 0 {
		s.logger.Warn(ctx, "model features differ from the default serving schema",
			logger.Any("missing", missing),
			logger.Any("extra", extra),
		)
	}

	s.started = true
	s.modelVersion = m.Version
	s.defaultSchema = len(missing) == 0 && len(extra) == 0
	s.logger.Info(ctx, "predictor started",
		logger.String("modelVersion", m.Version),
		logger.Int("features", len(m.Features)),
		logger.Int("referenceFields", params.Len()),
		logger.Float64("threshold", s.calibrator.Threshold()),
		logger.Int("screeningWorkers", s.screeningWorkers),
	)
	return nil
}

// Stop marks the service as stopped. Loaded artifacts stay cached.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "predictor stopped")
}

// loadModel loads the classifier and rejects an artifact trained for a
// different operating threshold.
func (s *Service) loadModel(ctx context.Context) (*classifier.Model, error) {
	m, err := s.model.Load(ctx)
	if err != nil {
		return nil, err
	}
	if m.Threshold != 0 && m.Threshold != s.calibrator.Threshold() {
		return nil, fmt.Errorf("%w: model %g, configured %g",
			ErrThresholdMismatch, m.Threshold, s.calibrator.Threshold())
	}
	return m, nil
}

// Predict scores one measurement. Every failure wraps ErrPrediction and keeps
// the underlying kind matchable; no partial result is returned.
func (s *Service) Predict(ctx context.Context, m measurement.Measurement) (Result, error) {
	start := time.Now()

	res, err := s.predict(ctx, m)
	if err != nil {
		kind := Kind(err)
		s.failures.Add(1)
		metrics.RecordPredictionError(kind)
		if kind == KindValidation {
			s.logger.Debug(ctx, "rejected measurement", logger.Error(err))
		} else {
			s.logger.Error(ctx, "prediction failed", logger.String("kind", kind), logger.Error(err))
		}
		return Result{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}

	s.predictions.Add(1)
	metrics.RecordPrediction(res.Positive, string(res.Level), res.Score,
		float64(time.Since(start).Microseconds())/1000)
	return res, nil
}

func (s *Service) predict(ctx context.Context, m measurement.Measurement) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.loadModel(ctx); err != nil {
		return Result{}, err
	}
	schema, err := s.model.Schema(ctx)
	if err != nil {
		return Result{}, err
	}

	v, err := features.Encode(m, params, schema)
	if err != nil {
		return Result{}, err
	}
	p, err := s.model.PredictProba(ctx, v)
	if err != nil {
		return Result{}, err
	}
	score, err := s.calibrator.Calibrate(p)
	if err != nil {
		return Result{}, err
	}
	odds, err := s.model.OddsRatios(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Probability: p,
		Score:       score,
		Positive:    s.calibrator.Label(p),
		Level:       s.calibrator.Level(score),
		OddsRatios:  odds,
	}, nil
}

// OddsRatios returns e^coefficient for every model feature.
func (s *Service) OddsRatios(ctx context.Context) (map[string]float64, error) {
	if _, err := s.loadModel(ctx); err != nil {
		return nil, err
	}
	return s.model.OddsRatios(ctx)
}

// Threshold returns the operating threshold.
func (s *Service) Threshold() float64 {
	return s.calibrator.Threshold()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":          s.started,
		"modelVersion":     s.modelVersion,
		"defaultSchema":    s.defaultSchema,
		"threshold":        s.calibrator.Threshold(),
		"screeningWorkers": s.screeningWorkers,
		"maxScreenRows":    s.maxScreenRows,
		"predictions":      s.predictions.Load(),
		"failures":         s.failures.Load(),
		"screenings":       s.screenings.Load(),
	}
}

// Error kinds reported by Kind.
const (
	KindValidation    = "validation"
	KindReferenceData = "reference_data"
	KindModel         = "model"
	KindSchema        = "schema"
	KindConfig        = "config"
	KindCanceled      = "canceled"
	KindInternal      = "internal"
)

// Kind classifies a prediction error for metrics and transport mapping.
func Kind(err error) string {
	// Artifact kinds come first: a bad reference row also wraps a
	// measurement kind.
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, stats.ErrReferenceData), errors.Is(err, stats.ErrInsufficientData):
		return KindReferenceData
	case errors.Is(err, classifier.ErrModelUnavailable), errors.Is(err, classifier.ErrCorruptModel):
		return KindModel
	case measurement.IsValidation(err):
		return KindValidation
	case errors.Is(err, features.ErrSchemaMismatch):
		return KindSchema
	case errors.Is(err, features.ErrZeroStdDev),
		errors.Is(err, features.ErrMissingParams),
		errors.Is(err, scoring.ErrInvalidThreshold),
		errors.Is(err, ErrThresholdMismatch):
		return KindConfig
	default:
		return KindInternal
	}
}
