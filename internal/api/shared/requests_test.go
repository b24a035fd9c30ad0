package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDQueryParam(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    int64
		wantErr error
	}{
		{name: "valid", target: "/x?item_id=7", want: 7},
		{name: "zero", target: "/x?item_id=0", want: 0},
		{name: "missing", target: "/x", wantErr: ErrMissingParam},
		{name: "empty", target: "/x?item_id=", wantErr: ErrMissingParam},
		{name: "non-integer", target: "/x?item_id=abc", wantErr: ErrInvalidParam},
		{name: "float", target: "/x?item_id=1.5", wantErr: ErrInvalidParam},
		{name: "negative", target: "/x?item_id=-3", wantErr: ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			got, err := ParseIDQueryParam(r, "item_id")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDPathParam(t *testing.T) {
	id, err := ParseIDPathParam("task_id", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseIDPathParam("task_id", "")
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = ParseIDPathParam("task_id", "-1")
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=0"`
	}

	assert.NoError(t, ValidateRequest(payload{Name: "x", Count: 1}))
	assert.Error(t, ValidateRequest(payload{Count: 1}))
	assert.Error(t, ValidateRequest(payload{Name: "x", Count: -1}))
}
