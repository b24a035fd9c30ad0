package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgladkov/admoderation/internal/service"
	"github.com/sgladkov/admoderation/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "advertisement not found", err: service.ErrAdvertisementNotFound, want: http.StatusNotFound},
		{name: "task not found", err: service.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "store listing sentinel", err: store.ErrListingNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", store.ErrTaskNotFound), want: http.StatusNotFound},
		{name: "unavailable", err: store.ErrUnavailable, want: http.StatusServiceUnavailable},
		{name: "invalid entity", err: store.ErrInvalidEntity, want: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Advertisement not found", GetSafeErrorMessage(service.ErrAdvertisementNotFound))
	assert.Equal(t, "Moderation task not found", GetSafeErrorMessage(service.ErrTaskNotFound))
	assert.Equal(t, "Service temporarily unavailable", GetSafeErrorMessage(store.ErrUnavailable))

	// Internal details never leak through.
	leaky := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(leaky))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
