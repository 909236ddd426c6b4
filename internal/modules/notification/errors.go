package notification

import "errors"

var (
	// ErrUnknownNotificationType means a dispatch was attempted for a
	// type the renderer has no mapping for. Programmer error, never a
	// runtime condition.
	ErrUnknownNotificationType = errors.New("unknown notification type")

	// ErrDispatchFailed wraps store failures during dispatch. Callers
	// performing a state transition log it and keep the transition.
	ErrDispatchFailed = errors.New("notification dispatch failed")

	ErrNotFound           = errors.New("notification not found")
	ErrActionAlreadyTaken = errors.New("action already taken or not required")
)
