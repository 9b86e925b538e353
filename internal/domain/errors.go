package domain

import "errors"

var (
	// ErrNotFound marks a lookup for an id the store does not hold.
	ErrNotFound = errors.New("review not found")

	// ErrValidation marks input rejected before any store or cache access.
	// Wrap with fmt.Errorf("%w: ...") and test with errors.Is.
	ErrValidation = errors.New("validation failed")
)
