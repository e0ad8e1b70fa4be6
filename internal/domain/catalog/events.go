package catalog

import (
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeStockLow is raised when a product drops to its minimum stock
const EventTypeStockLow = "stock.low"

// StockLowEvent carries the product that needs replenishment
type StockLowEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
}

// NewStockLowEvent creates a stock.low event for the product
func NewStockLowEvent(p *Product) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, "Product", p.ID, p.PartnerID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Stock:           p.Stock,
		MinStock:        p.MinStock,
	}
}
