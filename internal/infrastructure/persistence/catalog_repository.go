package persistence

import (
	"context"
	"strings"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForPartner finds a product by ID within a partner
func (r *GormProductRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDForUpdate finds a product and locks its row for the current transaction
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindBySKU finds a product by SKU within a partner
func (r *GormProductRepository) FindBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND sku = ?", partnerID, catalog.NormalizeSKU(sku)).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, partnerID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND id IN ?", partnerID, ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAllForPartner lists the products of a partner
func (r *GormProductRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, partnerID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []catalog.Product
	if err := paginate(r.filtered(ctx, partnerID, filter), filter.Filter, ProductSortFields, "name").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, partnerID uuid.UUID, filter catalog.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("partner_id = ?", partnerID)
	if filter.Search != "" {
		op := likeOp(r.db)
		p := searchPattern(filter.Search)
		q = q.Where("(name "+op+" ? OR sku "+op+" ? OR brand "+op+" ? OR compatible_vehicles "+op+" ?)", p, p, p, p)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", catalog.NormalizeBrand(filter.Brand))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.LowStock {
		q = q.Where("min_stock > 0 AND stock <= min_stock")
	}
	return q
}

// ExistsBySKU checks if a product with the given SKU exists for the partner
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("partner_id = ? AND sku = ?", partnerID, catalog.NormalizeSKU(sku)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error)
}

// DeleteForPartner deletes a product within a partner
func (r *GormProductRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&catalog.Product{}, "partner_id = ? AND id = ?", partnerID, id))
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForPartner finds a category by ID within a partner
func (r *GormCategoryRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Category, error) {
	var c catalog.Category
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindAllForPartner lists the categories of a partner
func (r *GormCategoryRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]catalog.Category, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&catalog.Category{}).Where("partner_id = ?", partnerID)
		if filter.Search != "" {
			op := likeOp(r.db)
			p := searchPattern(filter.Search)
			q = q.Where("(name "+op+" ? OR code "+op+" ?)", p, p)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var categories []catalog.Category
	if err := paginate(base(), filter, CategorySortFields, "name").Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// ExistsByCode checks whether a category code is taken within a partner
func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("partner_id = ? AND code = ?", partnerID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountProducts counts the products assigned to a category
func (r *GormCategoryRepository) CountProducts(ctx context.Context, partnerID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("partner_id = ? AND category_id = ?", partnerID, categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

// DeleteForPartner deletes a category within a partner
func (r *GormCategoryRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&catalog.Category{}, "partner_id = ? AND id = ?", partnerID, id))
}

// GormServiceOfferingRepository implements catalog.ServiceOfferingRepository using GORM
type GormServiceOfferingRepository struct {
	db *gorm.DB
}

// NewGormServiceOfferingRepository creates a new GormServiceOfferingRepository
func NewGormServiceOfferingRepository(db *gorm.DB) *GormServiceOfferingRepository {
	return &GormServiceOfferingRepository{db: db}
}

// FindByIDForPartner finds a service by ID within a partner
func (r *GormServiceOfferingRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.ServiceOffering, error) {
	var s catalog.ServiceOffering
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindAll lists services matching the filter
func (r *GormServiceOfferingRepository) FindAll(ctx context.Context, filter catalog.ServiceOfferingFilter) ([]catalog.ServiceOffering, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&catalog.ServiceOffering{})
		if filter.PartnerID != nil {
			q = q.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.Search != "" {
			op := likeOp(r.db)
			p := searchPattern(filter.Search)
			q = q.Where("(name "+op+" ? OR code "+op+" ?)", p, p)
		}
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.ActiveOnly {
			q = q.Where("active = ?", true)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var services []catalog.ServiceOffering
	if err := paginate(base(), filter.Filter, ServiceOfferingSortFields, "name").Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

// ExistsByCode checks whether a service code is taken within a partner
func (r *GormServiceOfferingRepository) ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.ServiceOffering{}).
		Where("partner_id = ? AND code = ?", partnerID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a service
func (r *GormServiceOfferingRepository) Save(ctx context.Context, s *catalog.ServiceOffering) error {
	return translate(r.db.WithContext(ctx).Save(s).Error)
}

// DeleteForPartner deletes a service within a partner
func (r *GormServiceOfferingRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&catalog.ServiceOffering{}, "partner_id = ? AND id = ?", partnerID, id))
}

var (
	_ catalog.ProductRepository         = (*GormProductRepository)(nil)
	_ catalog.CategoryRepository        = (*GormCategoryRepository)(nil)
	_ catalog.ServiceOfferingRepository = (*GormServiceOfferingRepository)(nil)
)
