package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrListingNotFound, ErrTaskNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable is returned when the backing database cannot be reached
	// at all (connection refused, timeout, pool closed). HTTP callers map
	// this to 503 rather than 500.
	ErrUnavailable = errors.New("store unavailable")

	// ErrAlreadyProcessed is returned by conditional task updates when the
	// task has already left the pending state. Callers should treat this as
	// a benign "someone else finished first" outcome, not a failure.
	ErrAlreadyProcessed = errors.New("task already processed")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrListingNotFound indicates that the requested advertisement does not
	// exist in the store.
	ErrListingNotFound = fmt.Errorf("%w: advertisement", ErrNotFound)

	// ErrTaskNotFound indicates that the requested moderation task does not
	// exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: moderation task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailableError checks if the error indicates the store itself is
// unreachable, as opposed to a logical failure with an individual row.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "listing", "task")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
