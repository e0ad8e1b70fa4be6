package handler

import (
	"net/http"
	"strconv"

	"github.com/autocare/platform/internal/application/revenue"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RevenueHandler handles revenue ingest and reporting endpoints
type RevenueHandler struct {
	BaseHandler
	revenueService *revenue.RevenueService
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(revenueService *revenue.RevenueService) *RevenueHandler {
	return &RevenueHandler{
		revenueService: revenueService,
	}
}

// scope pins non-admin callers to their own partner
func (h *RevenueHandler) scope(c *gin.Context, requested *uuid.UUID) (revenue.Scope, bool) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return revenue.Scope{}, false
	}
	return revenue.ScopeFor(partnerID, middleware.GetJWTRole(c) == identity.RoleAdmin, requested), true
}

// Sync receives a daily rollup pushed by an agent. The partner comes from
// the token, never from the body.
// POST /api/v1/revenue/sync
func (h *RevenueHandler) Sync(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var req revenue.IngestRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	result, err := h.revenueService.Ingest(c.Request.Context(), partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns a page of rollups
// GET /api/v1/revenue
func (h *RevenueHandler) List(c *gin.Context) {
	var filter revenue.RevenueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}
	scope, ok := h.scope(c, filter.PartnerID)
	if !ok {
		return
	}

	rows, err := h.revenueService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, rows)
}

// Summary sums rollups over a date range
// GET /api/v1/revenue/summary
func (h *RevenueHandler) Summary(c *gin.Context) {
	var filter revenue.RevenueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}
	scope, ok := h.scope(c, filter.PartnerID)
	if !ok {
		return
	}

	summary, err := h.revenueService.Summary(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Export renders the range as a workbook and sends it as an attachment
// GET /api/v1/revenue/export
func (h *RevenueHandler) Export(c *gin.Context) {
	var filter revenue.RevenueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}
	scope, ok := h.scope(c, filter.PartnerID)
	if !ok {
		return
	}

	result, err := h.revenueService.Export(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(result.Filename))
	if result.ArchivedAt != "" {
		c.Header("X-Archive-Location", result.ArchivedAt)
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ListSyncLogs returns a page of sync logs
// GET /api/v1/sync-logs
func (h *RevenueHandler) ListSyncLogs(c *gin.Context) {
	var filter revenue.SyncLogListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}
	scope, ok := h.scope(c, filter.PartnerID)
	if !ok {
		return
	}

	logs, err := h.revenueService.ListSyncLogs(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, logs)
}
