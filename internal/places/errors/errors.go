package errors

import "errors"

var (
	ErrNotFound = errors.New("place not found")

	ErrInvalidID = errors.New("invalid place ID format")

	ErrDuplicateName = errors.New("place name already exists")
)
