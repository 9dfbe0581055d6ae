package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrPlanNotFound, ErrCoverageNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second plan for the same user and sequence).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrPlanNotFound indicates that the requested session pack plan does not exist.
	ErrPlanNotFound = fmt.Errorf("%w: session pack plan", ErrNotFound)

	// ErrCoverageNotFound indicates that the requested coverage record does not exist.
	ErrCoverageNotFound = fmt.Errorf("%w: coverage record", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrPlanExists indicates that a plan for the given user and session
	// sequence has already been persisted.
	ErrPlanExists = fmt.Errorf("%w: session pack plan", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
