package inventory

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementFilter narrows stock movement queries
type MovementFilter struct {
	shared.Filter
	ProductID *uuid.UUID
	Type      MovementType
	From      *time.Time
	To        *time.Time
}

// MovementRepository persists stock movements
type MovementRepository interface {
	Create(ctx context.Context, movements ...*StockMovement) error
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)
}
