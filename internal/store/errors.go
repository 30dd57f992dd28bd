package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store, or exists but belongs to a different owner. Cross-owner access
	// is deliberately indistinguishable from absence.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation would violate a uniqueness
	// constraint (e.g. a duplicate tag name for the same owner).
	ErrConflict = errors.New("entity already exists")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// Callers treat it as a server fault and do not retry internally.
	ErrUnavailable = errors.New("store unavailable")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrTagNotFound indicates that the requested tag does not exist.
	ErrTagNotFound = fmt.Errorf("%w: tag", ErrNotFound)

	// ErrReminderNotFound indicates that the requested reminder does not exist.
	ErrReminderNotFound = fmt.Errorf("%w: reminder", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// Entity-specific "conflict" errors

	// ErrTagNameExists indicates that the owner already has a tag with the
	// given name.
	ErrTagNameExists = fmt.Errorf("%w: tag name", ErrConflict)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of uniqueness conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
