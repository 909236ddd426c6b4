package listing

import "errors"

var (
	ErrNotFound     = errors.New("listing not found")
	ErrInvalidState = errors.New("operation not allowed in current listing status")
	ErrForbidden    = errors.New("actor does not own this listing")
	ErrValidation   = errors.New("invalid request")
)
