package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRequestTooLarge  = errors.New("request body too large")
)
