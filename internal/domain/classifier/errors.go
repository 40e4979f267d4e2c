package classifier

import "errors"

// Sentinel kinds for model loading failures.
var (
	ErrModelUnavailable = errors.New("model artifact unavailable")
	ErrCorruptModel     = errors.New("model artifact corrupt")
)
