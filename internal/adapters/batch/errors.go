package batch

import "errors"

// Sentinel kinds for screening file errors.
var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmpty          = errors.New("no data rows")
	ErrMalformed      = errors.New("malformed csv")
)
