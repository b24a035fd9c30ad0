package api

import (
	"errors"
	"net/http"

	"github.com/sgladkov/admoderation/internal/service"
	"github.com/sgladkov/admoderation/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrAdvertisementNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrListingNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound

	// Backend unreachable
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrAdvertisementNotFound),
		errors.Is(err, store.ErrListingNotFound):
		return "Advertisement not found"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Moderation task not found"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}
