package persistence

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForPartner loads a sale with its items
func (r *GormSaleRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&sale).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

// FindAllForPartner lists the sales of a partner, newest first by default
func (r *GormSaleRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&trade.Sale{}).Where("partner_id = ?", partnerID)
		if filter.Search != "" {
			q = q.Where("number "+likeOp(r.db)+" ?", searchPattern(filter.Search))
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.From != nil {
			q = q.Where("sold_at >= ?", filter.From.UTC())
		}
		if filter.To != nil {
			q = q.Where("sold_at < ?", filter.To.UTC())
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sales []trade.Sale
	if err := paginate(base(), filter.Filter, SaleSortFields, "sold_at").
		Preload("Items").
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// FindSoldBetween returns every sale with from <= sold_at < to, items included
func (r *GormSaleRepository) FindSoldBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("partner_id = ? AND sold_at >= ? AND sold_at < ?", partnerID, from.UTC(), to.UTC()).
		Order("sold_at ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindRefundedBetween returns every sale with from <= refunded_at < to.
// Items are not loaded.
func (r *GormSaleRepository) FindRefundedBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND refunded_at >= ? AND refunded_at < ?", partnerID, from.UTC(), to.UTC()).
		Order("refunded_at ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save writes the sale header and upserts its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(sale).Error; err != nil {
			return err
		}
		if len(sale.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sale.Items).Error
	}))
}

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForPartner loads a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("partner_id = ? AND id = ?", partnerID, id).
		First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindAllForPartner lists the purchase orders of a partner
func (r *GormPurchaseOrderRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter trade.PurchaseOrderFilter) ([]trade.PurchaseOrder, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{}).Where("partner_id = ?", partnerID)
		if filter.Search != "" {
			op := likeOp(r.db)
			p := searchPattern(filter.Search)
			q = q.Where("(number "+op+" ? OR supplier_name "+op+" ?)", p, p)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []trade.PurchaseOrder
	if err := paginate(base(), filter.Filter, PurchaseOrderSortFields, "created_at").
		Preload("Items").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save writes the order header and upserts its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&order.Items).Error
	}))
}

// DeleteForPartner deletes a purchase order and its items
func (r *GormPurchaseOrderRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rowsOrNotFound(tx.Delete(&trade.PurchaseOrder{}, "partner_id = ? AND id = ?", partnerID, id)); err != nil {
			return err
		}
		return tx.Delete(&trade.PurchaseOrderItem{}, "purchase_order_id = ?", id).Error
	})
}

var (
	_ trade.SaleRepository          = (*GormSaleRepository)(nil)
	_ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
)
