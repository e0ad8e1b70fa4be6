package inventory

import (
	"time"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/google/uuid"
)

// AdjustStockRequest represents a manual stock correction. Quantity is signed.
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,ne=0"`
	Note      string    `json:"note" binding:"required,min=1,max=500"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Type          string     `json:"type"`
	Quantity      int        `json:"quantity"`
	BalanceAfter  int        `json:"balance_after"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain StockMovement to MovementResponse
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Type      string     `form:"type" binding:"omitempty,oneof=purchase sale refund adjustment"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LowStockItem is a product at or below its threshold
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
	Shortfall int       `json:"shortfall"`
}

// ToLowStockItem converts a product to LowStockItem
func ToLowStockItem(p *catalog.Product) LowStockItem {
	return LowStockItem{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Shortfall: p.MinStock - p.Stock,
	}
}
