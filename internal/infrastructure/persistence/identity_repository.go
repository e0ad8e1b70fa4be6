package persistence

import (
	"context"
	"strings"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartnerRepository implements identity.PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a partner by its ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Partner, error) {
	var p identity.Partner
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByCode finds a partner by its unique code
func (r *GormPartnerRepository) FindByCode(ctx context.Context, code string) (*identity.Partner, error) {
	var p identity.Partner
	if err := r.db.WithContext(ctx).First(&p, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindAll lists partners matching the filter
func (r *GormPartnerRepository) FindAll(ctx context.Context, filter identity.PartnerFilter) ([]identity.Partner, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var partners []identity.Partner
	if err := paginate(r.filtered(ctx, filter), filter.Filter, PartnerSortFields, "name").Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

func (r *GormPartnerRepository) filtered(ctx context.Context, filter identity.PartnerFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&identity.Partner{})
	if filter.Search != "" {
		op := likeOp(r.db)
		p := searchPattern(filter.Search)
		q = q.Where("(name "+op+" ? OR code "+op+" ? OR city "+op+" ?)", p, p, p)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	return q
}

// ExistsByCode checks whether a partner code is taken
func (r *GormPartnerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.Partner{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *identity.Partner) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// Delete deletes a partner
func (r *GormPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&identity.Partner{}, "id = ?", id))
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", strings.ToLower(strings.TrimSpace(username))).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindAll lists users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []identity.User
	if err := paginate(r.filtered(ctx, filter), filter.Filter, UserSortFields, "created_at").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserRepository) filtered(ctx context.Context, filter identity.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&identity.User{})
	if filter.PartnerID != nil {
		q = q.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.Search != "" {
		op := likeOp(r.db)
		p := searchPattern(filter.Search)
		q = q.Where("(username "+op+" ? OR email "+op+" ? OR display_name "+op+" ?)", p, p, p)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// ExistsByUsername checks whether a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

// Delete deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&identity.User{}, "id = ?", id))
}

var (
	_ identity.PartnerRepository = (*GormPartnerRepository)(nil)
	_ identity.UserRepository    = (*GormUserRepository)(nil)
)
