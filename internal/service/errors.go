package service

import (
	"errors"
	"fmt"

	"github.com/sgladkov/admoderation/internal/store"
)

// Sentinel errors returned by ModerationService. The API layer maps these
// to HTTP status codes.
var (
	// ErrAdvertisementNotFound indicates that the advertisement does not exist.
	ErrAdvertisementNotFound = errors.New("advertisement not found")

	// ErrTaskNotFound indicates that the moderation task does not exist.
	ErrTaskNotFound = errors.New("moderation task not found")
)

// ModerationServiceError wraps errors from the moderation service with context.
type ModerationServiceError struct {
	// Operation is the operation that failed (e.g., "predict", "enqueue").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ModerationServiceError.
func (e *ModerationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("moderation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("moderation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ModerationServiceError) Unwrap() error {
	return e.Err
}

// NewModerationServiceError creates a new ModerationServiceError.
// Known store sentinels are mapped to service-level sentinels and returned
// directly without wrapping.
func NewModerationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrAdvertisementNotFound) || errors.Is(err, store.ErrListingNotFound) {
		return ErrAdvertisementNotFound
	}
	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	return &ModerationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
