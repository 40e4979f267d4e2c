package measurement

import "errors"

// Sentinel kinds for input validation failures.
var (
	ErrMissingField = errors.New("missing measurement field")
	ErrNotNumeric   = errors.New("measurement field is not numeric")
	ErrOutOfRange   = errors.New("measurement field out of range")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrNotNumeric) ||
		errors.Is(err, ErrOutOfRange)
}
