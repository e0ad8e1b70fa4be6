package trade

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleFilter narrows sale queries
type SaleFilter struct {
	shared.Filter
	Status     SaleStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// SaleRepository defines the interface for sale persistence.
// Loaded sales always carry their items.
type SaleRepository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*Sale, error)
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)
	// FindSoldBetween returns every sale with from <= sold_at < to
	FindSoldBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]Sale, error)
	// FindRefundedBetween returns every sale with from <= refunded_at < to
	FindRefundedBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]Sale, error)
	Save(ctx context.Context, sale *Sale) error
}

// PurchaseOrderFilter narrows purchase order queries
type PurchaseOrderFilter struct {
	shared.Filter
	Status PurchaseOrderStatus
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*PurchaseOrder, error)
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter PurchaseOrderFilter) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error
}
