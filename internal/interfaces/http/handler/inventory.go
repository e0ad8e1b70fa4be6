package handler

import (
	inventoryapp "github.com/autocare/platform/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock movement endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{
		stockService: stockService,
	}
}

// ListMovements returns a page of stock movements
// GET /api/v1/inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	movements, err := h.stockService.ListMovements(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, movements)
}

// Adjust applies a manual stock correction
// POST /api/v1/inventory/adjustments
func (h *InventoryHandler) Adjust(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	movement, err := h.stockService.Adjust(c.Request.Context(), partnerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// LowStock lists active products at or below their minimum stock
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	items, err := h.stockService.LowStock(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}
