package storage

import "errors"

// Storage errors shared by all order store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Order records are never replaced.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition is returned when a status change is attempted
	// on an order that is not Open, or toward a non-terminal status.
	// Filled and Cancelled are terminal; the transition fires at most once.
	ErrInvalidTransition = errors.New("invalid status transition")
)
