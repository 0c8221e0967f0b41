package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrInvalidTimeRange = errors.New("event end time must be after event start time")

	ErrTimeConflict = errors.New("booking overlaps an approved booking")

	// ErrStatusChanged is returned when a conditional status update finds the
	// booking in a different status than the one it was loaded with.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
