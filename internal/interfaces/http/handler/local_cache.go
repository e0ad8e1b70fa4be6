package handler

import (
	"errors"
	"net/http"
	"strconv"

	localcacheapp "github.com/autocare/platform/internal/application/localcache"
	"github.com/autocare/platform/internal/domain/localcache"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LocalCacheHandler serves the agent's catalog cache
type LocalCacheHandler struct {
	BaseHandler
	cache *localcacheapp.CacheManager
}

// NewLocalCacheHandler creates a new LocalCacheHandler
func NewLocalCacheHandler(cache *localcacheapp.CacheManager) *LocalCacheHandler {
	return &LocalCacheHandler{
		cache: cache,
	}
}

func (h *LocalCacheHandler) kind(c *gin.Context) (localcache.Kind, bool) {
	kind, err := localcache.ParseKind(c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return kind, true
}

// Get returns the fresh rows of a kind, fetching from the platform when
// they are stale or refresh=true
// GET /local/cache/:kind
func (h *LocalCacheHandler) Get(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	result, err := h.cache.GetOrFetch(c.Request.Context(), kind, refresh)
	var fetchErr *localcacheapp.FetchError
	if errors.As(err, &fetchErr) {
		h.Error(c, http.StatusBadGateway, dto.ErrCodeBadGateway, "Platform is unreachable and no fresh cache exists")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Clear empties one table, or all of them without a kind
// DELETE /local/cache, DELETE /local/cache/:kind
func (h *LocalCacheHandler) Clear(c *gin.Context) {
	var kind localcache.Kind
	if c.Param("kind") != "" {
		var ok bool
		if kind, ok = h.kind(c); !ok {
			return
		}
	}

	result, err := h.cache.Clear(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cleanup removes rows older than the TTL
// POST /local/cache/cleanup
func (h *LocalCacheHandler) Cleanup(c *gin.Context) {
	result, err := h.cache.CleanExpired(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats reports per-table counts
// GET /local/cache/stats
func (h *LocalCacheHandler) Stats(c *gin.Context) {
	report, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
