package persistence

import (
	"context"

	"github.com/autocare/platform/internal/domain/customer"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForPartner finds a customer by ID within a partner
func (r *GormCustomerRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindAllForPartner lists the customers of a partner. Search matches name, phone and plate.
func (r *GormCustomerRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]customer.Customer, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&customer.Customer{}).Where("partner_id = ?", partnerID)
		if filter.Search != "" {
			op := likeOp(r.db)
			p := searchPattern(filter.Search)
			q = q.Where("(name "+op+" ? OR phone "+op+" ? OR vehicle_plate "+op+" ?)", p, p, searchPattern(customer.NormalizePlate(filter.Search)))
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var customers []customer.Customer
	if err := paginate(base(), filter, CustomerSortFields, "name").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

// DeleteForPartner deletes a customer within a partner
func (r *GormCustomerRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&customer.Customer{}, "partner_id = ? AND id = ?", partnerID, id))
}

var _ customer.Repository = (*GormCustomerRepository)(nil)
