package catalog

import (
	"context"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductFilter narrows product queries
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	Brand      string
	Status     ProductStatus
	LowStock   bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, partnerID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (*Product, error)
	FindByIDs(ctx context.Context, partnerID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter ProductFilter) ([]Product, int64, error)
	ExistsBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (bool, error)
	Save(ctx context.Context, product *Product) error
	DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*Category, error)
	FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]Category, int64, error)
	ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error)
	CountProducts(ctx context.Context, partnerID, categoryID uuid.UUID) (int64, error)
	Save(ctx context.Context, category *Category) error
	DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error
}

// ServiceOfferingFilter narrows service queries. A nil PartnerID lists all partners.
type ServiceOfferingFilter struct {
	shared.Filter
	PartnerID  *uuid.UUID
	Category   string
	ActiveOnly bool
}

// ServiceOfferingRepository defines the interface for service persistence
type ServiceOfferingRepository interface {
	FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*ServiceOffering, error)
	FindAll(ctx context.Context, filter ServiceOfferingFilter) ([]ServiceOffering, int64, error)
	ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, service *ServiceOffering) error
	DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error
}
