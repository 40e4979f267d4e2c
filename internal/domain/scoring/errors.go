package scoring

import "errors"

// Sentinel kinds for calibration failures.
var (
	ErrInvalidThreshold   = errors.New("threshold must be strictly between 0 and 1")
	ErrInvalidProbability = errors.New("probability outside [0,1]")
)
