package identity

import (
	"context"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// PartnerRepository defines the interface for partner persistence
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	FindByCode(ctx context.Context, code string) (*Partner, error)
	FindAll(ctx context.Context, filter PartnerFilter) ([]Partner, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, partner *Partner) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PartnerFilter narrows partner queries
type PartnerFilter struct {
	shared.Filter
	Type   PartnerType
	Status PartnerStatus
	City   string
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserFilter narrows user queries. A nil PartnerID lists every partner.
type UserFilter struct {
	shared.Filter
	PartnerID *uuid.UUID
	Role      Role
	Status    UserStatus
}
