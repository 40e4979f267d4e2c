package stats

import "errors"

// Sentinel kinds for standardization parameter failures.
var (
	ErrReferenceData    = errors.New("reference dataset unavailable")
	ErrInsufficientData = errors.New("reference dataset too small")
)
