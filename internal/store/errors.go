package store

import "errors"

var (
	// ErrNotFound indicates no lesson matches the requested identifier.
	ErrNotFound = errors.New("lesson not found")

	// ErrInvalidTransition indicates a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)
