package handler

import (
	"github.com/autocare/platform/internal/application/revenue"
	"github.com/gin-gonic/gin"
)

// LocalSyncHandler exposes the agent's revenue rollups and sync loop
type LocalSyncHandler struct {
	BaseHandler
	syncService *revenue.SyncService
}

// NewLocalSyncHandler creates a new LocalSyncHandler
func NewLocalSyncHandler(syncService *revenue.SyncService) *LocalSyncHandler {
	return &LocalSyncHandler{syncService: syncService}
}

// ComputeRequest is the body of POST /local/revenue/compute
type ComputeRequest struct {
	Date string `json:"date" binding:"omitempty,iso_date"`
}

// GetRevenue returns the stored rollup of a day, today by default
// GET /local/revenue?date=YYYY-MM-DD
func (h *LocalSyncHandler) GetRevenue(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.syncService.Today(c.Request.Context())
	}

	row, err := h.syncService.Get(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, row)
}

// Compute aggregates the local sales of a day into its rollup
// POST /local/revenue/compute
func (h *LocalSyncHandler) Compute(c *gin.Context) {
	var req ComputeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Invalid(c, err)
			return
		}
	}
	if req.Date == "" {
		req.Date = h.syncService.Today(c.Request.Context())
	}

	row, err := h.syncService.Compute(c.Request.Context(), req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, row)
}

// Sync recomputes recent days and pushes pending rows now
// POST /local/sync
func (h *LocalSyncHandler) Sync(c *gin.Context) {
	result, err := h.syncService.SyncNow(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Retry resets the attempts of failed rows and pushes them
// POST /local/sync/retry
func (h *LocalSyncHandler) Retry(c *gin.Context) {
	result, err := h.syncService.Retry(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Status reports row counts and the latest sync runs
// GET /local/sync/status
func (h *LocalSyncHandler) Status(c *gin.Context) {
	report, err := h.syncService.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
