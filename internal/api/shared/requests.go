package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// ErrMissingParam indicates a required query parameter was absent.
var ErrMissingParam = errors.New("missing required parameter")

// ErrInvalidParam indicates a parameter was present but unusable.
var ErrInvalidParam = errors.New("invalid parameter")

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ParseIDQueryParam extracts a non-negative integer identifier from the
// request query string. Missing, non-integer, and negative values are all
// rejected.
func ParseIDQueryParam(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return parseID(name, raw)
}

// ParseIDPathParam validates a non-negative integer identifier taken from
// the URL path.
func ParseIDPathParam(name, raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return parseID(name, raw)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParam, name)
	}
	if id < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidParam, name)
	}
	return id, nil
}
