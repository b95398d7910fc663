package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_LINE_ITEM", http.StatusBadRequest},
		{"INVALID_PAYLOAD", http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{"DUPLICATE_GRV", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"OVERPAYMENT", http.StatusUnprocessableEntity},
		{"SUPPLIER_UNRESOLVED", http.StatusUnprocessableEntity},
		{"GRV_INTAKE_FAILED", http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success omits error", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponse(map[string]int{"n": 1}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, string(raw))
	})

	t.Run("error carries code and request id", func(t *testing.T) {
		raw, err := json.Marshal(NewErrorResponseWithRequestID("DUPLICATE_GRV", "already received", "req-1"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":{"code":"DUPLICATE_GRV","message":"already received","request_id":"req-1"}}`, string(raw))
	})

	t.Run("meta", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponseWithMeta(nil, &Meta{Degraded: true, Policy: "best_effort"}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"meta":{"degraded":true,"policy":"best_effort"}}`, string(raw))
	})

	t.Run("validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{{Field: "date", Message: "This field is required"}})
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "date", resp.Error.Details[0].Field)
	})
}
