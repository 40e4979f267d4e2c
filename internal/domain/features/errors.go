package features

import "errors"

// Sentinel kinds for encoding failures.
var (
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	ErrMissingParams  = errors.New("missing standardization params")
	ErrZeroStdDev     = errors.New("zero standard deviation")
)
