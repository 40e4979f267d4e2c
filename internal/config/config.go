// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and GLYCO_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/okian/glyco/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ReferenceDataPath points at the training CSV used for standardization.
	ReferenceDataPath string `koanf:"reference_data_path"`

	// ModelPath points at the JSON logistic model artifact.
	ModelPath string `koanf:"model_path"`

	// Threshold is the operating decision threshold. Serving and training
	// analysis must read it from the same place.
	Threshold float64 `koanf:"threshold"`

	// MediumRiskCut is the display score where medium risk becomes high risk.
	MediumRiskCut float64 `koanf:"medium_risk_cut"`

	// ScreeningWorkers bounds concurrent scoring in batch screening.
	ScreeningWorkers int `koanf:"screening_workers"`

	// MaxScreenRows caps the rows accepted by one screening request.
	MaxScreenRows int `koanf:"max_screen_rows"`

	// MaxBodyBytes caps HTTP request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// EagerLoad loads both artifacts at startup instead of on first request.
	EagerLoad bool `koanf:"eager_load"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ReferenceDataPath: "data/processed/diabetes_train.csv",
		ModelPath:         "models/disease_classifier.json",
		Threshold:         scoring.DefaultThreshold,
		MediumRiskCut:     70,
		ScreeningWorkers:  runtime.NumCPU(),
		MaxScreenRows:     10_000,
		MaxBodyBytes:      8 << 20,
		EagerLoad:         true,
	}
}

// Validate checks values that would otherwise surface as wrong predictions.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ReferenceDataPath) == "":
		return fmt.Errorf("%w: reference_data_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelPath) == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case math.IsNaN(c.Threshold) || c.Threshold <= 0 || c.Threshold >= 1:
		return fmt.Errorf("%w: threshold %g must be strictly between 0 and 1", ErrInvalidConfig, c.Threshold)
	case c.MediumRiskCut <= 50 || c.MediumRiskCut > 100:
		return fmt.Errorf("%w: medium_risk_cut %g must be in (50,100]", ErrInvalidConfig, c.MediumRiskCut)
	case c.ScreeningWorkers <= 0:
		return fmt.Errorf("%w: screening_workers must be positive", ErrInvalidConfig)
	case c.MaxScreenRows <= 0:
		return fmt.Errorf("%w: max_screen_rows must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
