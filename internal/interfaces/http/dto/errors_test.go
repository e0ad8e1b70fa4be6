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
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"ERR_INVALID_SKU", http.StatusBadRequest},
		{"ERR_EMPTY_SALE", http.StatusBadRequest},
		{"ERR_CONFLICTING_COST", http.StatusUnprocessableEntity},
		{"SOMETHING", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, "ERR_NOT_FOUND", NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, "ERR_SERVICE_UNAVAILABLE", NormalizeErrorCode("SERVICE_UNAVAILABLE"))
	assert.Equal(t, ErrCodeForbidden, NormalizeErrorCode(ErrCodeForbidden))
	assert.Equal(t, ErrCodeInternal, NormalizeErrorCode(""))
}

func TestEnvelopeShape(t *testing.T) {
	t.Run("success with meta", func(t *testing.T) {
		b, err := json.Marshal(NewSuccessResponseWithMeta([]int{1, 2}, 45, 2, 20))
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, true, m["success"])
		assert.NotContains(t, m, "error")
		assert.Contains(t, m, "timestamp")
		meta := m["meta"].(map[string]any)
		assert.Equal(t, float64(3), meta["total_pages"])
	})

	t.Run("error", func(t *testing.T) {
		b, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Product not found", "req-1"))
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, false, m["success"])
		assert.Equal(t, "ERR_NOT_FOUND", m["error"])
		assert.Equal(t, "Product not found", m["message"])
		assert.Equal(t, "req-1", m["request_id"])
		assert.NotContains(t, m, "data")
	})
}
