package persistence

import (
	"context"

	"github.com/autocare/platform/internal/domain/settings"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements settings.Repository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindAll returns every setting of a partner ordered by key
func (r *GormSettingRepository) FindAll(ctx context.Context, partnerID uuid.UUID) ([]settings.Setting, error) {
	var items []settings.Setting
	if err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("key ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByKey returns one setting
func (r *GormSettingRepository) FindByKey(ctx context.Context, partnerID uuid.UUID, key string) (*settings.Setting, error) {
	var s settings.Setting
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND key = ?", partnerID, key).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Upsert inserts or replaces settings keyed by (partner_id, key)
func (r *GormSettingRepository) Upsert(ctx context.Context, items ...*settings.Setting) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(items).Error)
}

// Delete removes a setting
func (r *GormSettingRepository) Delete(ctx context.Context, partnerID uuid.UUID, key string) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&settings.Setting{}, "partner_id = ? AND key = ?", partnerID, key))
}

var _ settings.Repository = (*GormSettingRepository)(nil)
