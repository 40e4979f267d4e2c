package service

import (
	"github.com/okian/glyco/internal/config"
	"github.com/okian/glyco/internal/domain/classifier"
	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/stats"
)

// FromConfig builds a Service over the artifacts named in cfg. Options are
// applied after the configured components and may replace them.
func FromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	calibrator, err := scoring.NewCalibrator(cfg.Threshold, scoring.WithMediumRiskCut(cfg.MediumRiskCut))
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithStatsStore(stats.NewStore(stats.FileSource(cfg.ReferenceDataPath))),
		WithGateway(classifier.NewGateway(classifier.FileLoader(cfg.ModelPath))),
		WithCalibrator(calibrator),
		WithScreeningWorkers(cfg.ScreeningWorkers),
		WithMaxScreenRows(cfg.MaxScreenRows),
	}
	return New(append(base, opts...)...), nil
}
