package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist within the caller's tenant.
	ErrNotFound = errors.New("record not found")

	// ErrStaleState is returned when a conditional update matched no
	// rows, meaning the row is no longer in the state the caller
	// expected. Services translate this into their transition errors.
	ErrStaleState = errors.New("row not in expected state")

	// ErrInsufficientQuantity is returned when a quantity reservation
	// would drive available_quantity below zero, or the listing is not
	// accepting reservations.
	ErrInsufficientQuantity = errors.New("insufficient available quantity")

	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate row")
)
