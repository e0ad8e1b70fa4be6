package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/localcache"
	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	logins   atomic.Int32
	pushes   atomic.Int32
	tokenGen atomic.Int32
	// rejectFirst makes the first authorized call return 401
	rejectFirst atomic.Bool
	lastPush    atomic.Pointer[map[string]any]
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (p *fakePlatform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		p.logins.Add(1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "ERR_UNAUTHORIZED"})
			return
		}
		n := p.tokenGen.Add(1)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"access_token": fmt.Sprintf("token-%d", n)},
		})
	})
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if p.rejectFirst.CompareAndSwap(true, false) || r.Header.Get("Authorization") == "" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "ERR_TOKEN_EXPIRED"})
			return false
		}
		return true
	}
	mux.HandleFunc("/api/v1/revenue/sync", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		p.lastPush.Store(&body)
		p.pushes.Add(1)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": body})
	})
	mux.HandleFunc("/api/v1/catalog/products", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		page := r.URL.Query().Get("page")
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": "p" + page, "sku": "SKU-" + page, "name": "Part " + page}},
			"meta":    map[string]any{"total": 2, "page": page, "page_size": 100, "total_pages": 2},
		})
	})
	mux.HandleFunc("/api/v1/service-centers", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": "sc1", "name": "North"}},
		})
	})
	mux.HandleFunc("/api/v1/services", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "ERR_INTERNAL", "message": "boom"})
	})
	return mux
}

func newTestClient(t *testing.T, password string) (*Client, *fakePlatform) {
	t.Helper()
	p := &fakePlatform{}
	srv := httptest.NewServer(p.handler(t))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", Credentials{Username: "pos-1", Password: password}, time.Second)
	require.NoError(t, err)
	return c, p
}

func sampleRollup(t *testing.T) *revenue.RevenueData {
	t.Helper()
	r, err := revenue.NewRevenueData(uuid.New(), "pos-1", "2026-03-14", revenue.Figures{OrderCount: 3}, time.Now())
	require.NoError(t, err)
	return r
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("not a url", Credentials{}, 0)
	assert.Error(t, err)
}

func TestClient_PushRevenue_LogsInOnce(t *testing.T) {
	c, p := newTestClient(t, "secret")
	ctx := context.Background()

	require.NoError(t, c.PushRevenue(ctx, sampleRollup(t)))
	require.NoError(t, c.PushRevenue(ctx, sampleRollup(t)))

	assert.Equal(t, int32(1), p.logins.Load())
	assert.Equal(t, int32(2), p.pushes.Load())
	last := *p.lastPush.Load()
	assert.Equal(t, "2026-03-14", last["date"])
	assert.Equal(t, "pos-1", last["device_id"])
}

func TestClient_ReloginOn401(t *testing.T) {
	c, p := newTestClient(t, "secret")
	ctx := context.Background()

	_, err := c.Login(ctx)
	require.NoError(t, err)
	p.rejectFirst.Store(true)

	require.NoError(t, c.PushRevenue(ctx, sampleRollup(t)))
	assert.Equal(t, int32(2), p.logins.Load())
	token, _ := c.Token(ctx)
	assert.Equal(t, "token-2", token)
}

func TestClient_BadCredentials(t *testing.T) {
	c, p := newTestClient(t, "wrong")

	err := c.PushRevenue(context.Background(), sampleRollup(t))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), p.pushes.Load())
	assert.False(t, IsUnavailable(&APIError{Status: 401}))
}

func TestClient_FetchAll(t *testing.T) {
	c, _ := newTestClient(t, "secret")
	ctx := context.Background()

	t.Run("follows pagination", func(t *testing.T) {
		items, err := c.FetchAll(ctx, localcache.KindParts)
		require.NoError(t, err)
		require.Len(t, items, 2)
		e, err := localcache.EntryFromJSON(localcache.KindParts, items[1])
		require.NoError(t, err)
		assert.Equal(t, "SKU-2", e.Code)
	})

	t.Run("unpaginated list", func(t *testing.T) {
		items, err := c.FetchAll(ctx, localcache.KindServiceCenters)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := c.FetchAll(ctx, localcache.KindServices)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "ERR_INTERNAL", apiErr.Code)
		assert.True(t, IsUnavailable(err))
	})
}

func TestClient_FetchAllBeyondPageLimit(t *testing.T) {
	p := &fakePlatform{}
	srv := httptest.NewServer(p.handler(t))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, Credentials{Username: "pos-1", Password: "secret"}, time.Second, WithMaxFetchPages(1))
	require.NoError(t, err)

	items, err := c.FetchAll(context.Background(), localcache.KindParts)
	assert.ErrorIs(t, err, ErrFetchTruncated)
	assert.Nil(t, items)

	// A single page list stays within the limit
	items, err = c.FetchAll(context.Background(), localcache.KindServiceCenters)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
