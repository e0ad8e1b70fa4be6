package persistence

import (
	"context"

	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends movements. Movements are never updated.
func (r *GormMovementRepository) Create(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(movements).Error)
}

// FindAllForPartner lists the movements of a partner, newest first by default
func (r *GormMovementRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Where("partner_id = ?", partnerID)
		if filter.ProductID != nil {
			q = q.Where("product_id = ?", *filter.ProductID)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.From != nil {
			q = q.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("created_at < ?", *filter.To)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var movements []inventory.StockMovement
	if err := paginate(base(), filter.Filter, MovementSortFields, "created_at").Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
