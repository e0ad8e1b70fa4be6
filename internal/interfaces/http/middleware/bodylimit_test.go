package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// readAll answers 200 with the body length, or 413 when the reader hit the cap
func readAll(c *gin.Context) {
	b, err := io.ReadAll(c.Request.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}
	c.String(http.StatusOK, "%d", len(b))
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(64))
	router.POST("/api/v1/revenue/sync", readAll)
	router.GET("/api/v1/revenue", okHandler)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		chunked  bool
		wantCode int
		wantBody string
	}{
		{"small rollup passes", http.MethodPost, "/api/v1/revenue/sync", `{"date":"2026-03-01"}`, false, http.StatusOK, "21"},
		{"declared oversize is refused", http.MethodPost, "/api/v1/revenue/sync", strings.Repeat("x", 200), false, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge},
		{"chunked oversize fails on read", http.MethodPost, "/api/v1/revenue/sync", strings.Repeat("x", 200), true, http.StatusRequestEntityTooLarge, ""},
		{"reads are not limited", http.MethodGet, "/api/v1/revenue", "", false, http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
