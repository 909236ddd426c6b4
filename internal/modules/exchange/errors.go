package exchange

import "errors"

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrUnavailable       = errors.New("listing cannot satisfy the requested quantity")
	ErrForbidden         = errors.New("actor is not a party to this transaction")
	ErrValidation        = errors.New("invalid request")
)
