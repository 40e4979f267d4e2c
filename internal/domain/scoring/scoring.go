// Package scoring maps raw model probabilities to the 0-100 display score and
// the binary decision.
package scoring

import (
	"fmt"
	"math"
)

// Default scoring configuration constants.
const (
	DefaultThreshold     = 0.45
	defaultMediumRiskCut = 70.0
	midpointScore        = 50.0
	maxScoreValue        = 100.0
)

// Level is a coarse risk band derived from the display score.
type Level string

// Risk levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Option applies a configuration option to the Calibrator.
type Option func(*Calibrator)

// WithMediumRiskCut sets the display score at which medium risk becomes high
// risk. Values outside (50,100] are ignored.
func WithMediumRiskCut(cut float64) Option {
	return func(c *Calibrator) {
		if cut > midpointScore && cut <= maxScoreValue {
			c.highCut = cut
		}
	}
}

// Calibrator rescales probabilities so that the operating threshold lands on
// display score 50. Calibration is presentation only: decisions use Label,
// which compares the raw probability to the threshold.
type Calibrator struct {
	threshold float64
	highCut   float64
}

// NewCalibrator validates threshold, which must lie strictly inside (0,1).
func NewCalibrator(threshold float64, opts ...Option) (*Calibrator, error) {
	if math.IsNaN(threshold) || threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, threshold)
	}
	c := &Calibrator{
		threshold: threshold,
		highCut:   defaultMediumRiskCut,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Threshold returns the operating threshold.
func (c *Calibrator) Threshold() float64 { return c.threshold }

// Calibrate maps p in [0,1] to a display score in [0,100] with a
// piecewise-linear remap around the threshold.
func (c *Calibrator) Calibrate(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	// Fixed points are returned exactly rather than through float division.
	switch {
	case p == c.threshold:
		return midpointScore, nil
	case p == 1:
		return maxScoreValue, nil
	case p < c.threshold:
		return p * midpointScore / c.threshold, nil
	}
	score := midpointScore + (p-c.threshold)*midpointScore/(1-c.threshold)
	return math.Min(maxScoreValue, score), nil
}

// Label reports the binary decision for the raw probability p.
func (c *Calibrator) Label(p float64) bool {
	return p >= c.threshold
}

// Level buckets a display score into a risk level.
func (c *Calibrator) Level(score float64) Level {
	switch {
	case score < midpointScore:
		return LevelLow
	case score < c.highCut:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidProbability, p)
	}
	return nil
}
