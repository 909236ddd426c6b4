package moderation

import "errors"

var (
	ErrNotFound       = errors.New("listing not found")
	ErrAlreadyFlagged = errors.New("you have already flagged this listing")
	ErrValidation     = errors.New("invalid request")
)
