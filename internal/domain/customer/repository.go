package customer

import (
	"context"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for customer persistence
type Repository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*Customer, error)
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	Save(ctx context.Context, customer *Customer) error
	DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error
}
