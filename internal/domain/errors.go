// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Entity-specific validation errors wrap this sentinel so callers can
	// classify any of them with errors.Is(err, ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
