package settings

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists settings
type Repository interface {
	FindAll(ctx context.Context, partnerID uuid.UUID) ([]Setting, error)
	FindByKey(ctx context.Context, partnerID uuid.UUID, key string) (*Setting, error)
	// Upsert inserts or replaces every setting in one transaction
	Upsert(ctx context.Context, items ...*Setting) error
	Delete(ctx context.Context, partnerID uuid.UUID, key string) error
}
