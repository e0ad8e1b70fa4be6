package handler

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/application/trade"
	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LocalSaleHandler serves the agent's sale register. Every sale belongs to
// the device's partner; there is no logged-in cashier.
type LocalSaleHandler struct {
	BaseHandler
	saleService *trade.SaleService
	partnerID   uuid.UUID
	deviceID    string
	fallback    *time.Location
	zones       ZoneSource
}

// ZoneSource resolves a partner's business time zone
type ZoneSource interface {
	Location(ctx context.Context, partnerID uuid.UUID, fallback *time.Location) *time.Location
}

// NewLocalSaleHandler creates a new LocalSaleHandler. loc bounds the business
// day until a zone source is set.
func NewLocalSaleHandler(saleService *trade.SaleService, partnerID uuid.UUID, deviceID string, loc *time.Location) *LocalSaleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &LocalSaleHandler{
		saleService: saleService,
		partnerID:   partnerID,
		deviceID:    deviceID,
		fallback:    loc,
	}
}

// SetZoneSource makes the business day follow the partner's business_timezone
func (h *LocalSaleHandler) SetZoneSource(z ZoneSource) {
	h.zones = z
}

func (h *LocalSaleHandler) location(ctx context.Context) *time.Location {
	if h.zones == nil {
		return h.fallback
	}
	return h.zones.Location(ctx, h.partnerID, h.fallback)
}

// LocalSalesQuery selects the sales of one day
type LocalSalesQuery struct {
	Date     string `form:"date" binding:"omitempty,iso_date"`
	Status   string `form:"status" binding:"omitempty,oneof=pending completed refunded"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create records a sale on this device
// POST /local/sales
func (h *LocalSaleHandler) Create(c *gin.Context) {
	var req trade.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = h.deviceID
	}

	sale, err := h.saleService.Create(c.Request.Context(), h.partnerID, nil, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// List returns the sales of a day, today by default
// GET /local/sales?date=YYYY-MM-DD
func (h *LocalSaleHandler) List(c *gin.Context) {
	var q LocalSalesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Invalid(c, err)
		return
	}
	loc := h.location(c.Request.Context())
	if q.Date == "" {
		q.Date = time.Now().In(loc).Format(revenue.DateLayout)
	}
	from, to, err := revenue.DayBounds(q.Date, loc)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sales, err := h.saleService.List(c.Request.Context(), h.partnerID, trade.SaleListFilter{
		Status:   q.Status,
		From:     &from,
		To:       &to,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, sales)
}

// Refund refunds a completed sale on this device
// POST /local/sales/:id/refund
func (h *LocalSaleHandler) Refund(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	var req trade.RefundSaleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Invalid(c, err)
			return
		}
	}

	sale, err := h.saleService.Refund(c.Request.Context(), h.partnerID, id, nil, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}
