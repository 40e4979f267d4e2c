package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrPrediction        = errors.New("prediction failed")
	ErrThresholdMismatch = errors.New("model threshold differs from configured threshold")
	ErrTooManyRows       = errors.New("too many screening rows")
	ErrNoRows            = errors.New("no screening rows")
)
