package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("AutoCare Platform", "1.2.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "AutoCare Platform", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all healthy",
			checks:     []HealthCheck{{Name: "database", Critical: true, Check: passing}, {Name: "redis", Check: passing}},
			wantCode:   http.StatusOK,
			wantStatus: HealthStatusHealthy,
		},
		{
			name:       "redis down degrades",
			checks:     []HealthCheck{{Name: "database", Critical: true, Check: passing}, {Name: "redis", Check: failing}},
			wantCode:   http.StatusOK,
			wantStatus: HealthStatusDegraded,
		},
		{
			name:       "database down is unhealthy",
			checks:     []HealthCheck{{Name: "database", Critical: true, Check: failing}, {Name: "redis", Check: passing}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: HealthStatusUnhealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("AutoCare Platform", "dev", tt.checks...)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp struct {
				Success bool           `json:"success"`
				Data    HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Data.Status)
			assert.Len(t, resp.Data.Checks, 2)
		})
	}
}
