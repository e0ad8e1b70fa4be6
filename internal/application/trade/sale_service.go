package trade

import (
	"context"
	"sort"
	"time"

	appinv "github.com/autocare/platform/internal/application/inventory"
	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/settings"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettingsReader exposes a partner's settings as a key/value map
type SettingsReader interface {
	Values(ctx context.Context, partnerID uuid.UUID) (map[string]string, error)
}

// SaleMetrics records completed sales
type SaleMetrics interface {
	RecordSaleCompleted(ctx context.Context, partnerID, paymentMethod string, total decimal.Decimal)
}

// SaleService rings up, completes and refunds sales. With stock tracking
// on, completing a sale deducts stock and refunding restores it, in the
// same transaction as the status change.
type SaleService struct {
	txScope        appinv.TransactionScope
	saleRepo       trade.SaleRepository
	productRepo    catalog.ProductRepository
	settings       SettingsReader
	eventPublisher shared.EventPublisher
	productCache   appinv.ProductCacheInvalidator
	metrics        SaleMetrics
	trackStock     bool
	now            func() time.Time
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService with stock tracking enabled
func NewSaleService(
	txScope appinv.TransactionScope,
	saleRepo trade.SaleRepository,
	productRepo catalog.ProductRepository,
	settingsReader SettingsReader,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		txScope:     txScope,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		settings:    settingsReader,
		trackStock:  true,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetProductCache sets the product read cache to invalidate on stock changes
func (s *SaleService) SetProductCache(c appinv.ProductCacheInvalidator) {
	s.productCache = c
}

// SetMetrics sets the business metrics recorder
func (s *SaleService) SetMetrics(m SaleMetrics) {
	s.metrics = m
}

// DisableStockTracking records sales without touching products or customers.
// The agent register uses this: stock lives on the platform.
func (s *SaleService) DisableStockTracking() {
	s.trackStock = false
}

// Create rings up a new sale. A completed sale moves stock immediately.
func (s *SaleService) Create(ctx context.Context, partnerID uuid.UUID, cashierID *uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	lines, err := s.resolveLines(ctx, partnerID, req.Items)
	if err != nil {
		return nil, err
	}
	taxRate, err := s.taxRate(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	soldAt := s.now()
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}
	number := req.Number
	if number == "" {
		number = trade.GenerateSaleNumber(soldAt)
	}
	sale, err := trade.NewSale(trade.NewSaleInput{
		PartnerID:     partnerID,
		Number:        number,
		PaymentMethod: trade.PaymentMethod(req.PaymentMethod),
		SoldAt:        soldAt,
		Lines:         lines,
		Discount:      req.Discount,
		TaxRate:       taxRate,
		Status:        trade.SaleStatus(req.Status),
	})
	if err != nil {
		return nil, err
	}
	sale.CustomerID = req.CustomerID
	sale.CashierID = cashierID
	sale.DeviceID = req.DeviceID
	sale.Notes = req.Notes
	if cashierID != nil {
		sale.SetCreatedBy(*cashierID)
	}

	var touched []*catalog.Product
	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if s.trackStock && sale.CustomerID != nil {
			if _, err := repos.Customers().FindByIDForPartner(ctx, partnerID, *sale.CustomerID); err != nil {
				return shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
			}
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		if sale.Status != trade.SaleStatusCompleted {
			return nil
		}
		touched, err = s.applyCompletion(ctx, repos, sale, cashierID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale created",
		zap.String("partner_id", partnerID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("status", string(sale.Status)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	s.afterCommit(ctx, sale, touched)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Complete moves a pending sale to completed and deducts its stock
func (s *SaleService) Complete(ctx context.Context, partnerID, saleID uuid.UUID, userID *uuid.UUID) (*SaleResponse, error) {
	var (
		sale    *trade.Sale
		touched []*catalog.Product
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForPartner(ctx, partnerID, saleID)
		if err != nil {
			return err
		}
		if err := sale.Complete(); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		touched, err = s.applyCompletion(ctx, repos, sale, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, sale, touched)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Refund reverses a completed sale and restores its stock
func (s *SaleService) Refund(ctx context.Context, partnerID, saleID uuid.UUID, userID *uuid.UUID, req RefundSaleRequest) (*SaleResponse, error) {
	var (
		sale    *trade.Sale
		touched []*catalog.Product
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForPartner(ctx, partnerID, saleID)
		if err != nil {
			return err
		}
		if err := sale.Refund(req.Reason); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		if !s.trackStock {
			return nil
		}
		touched, err = s.moveSaleStock(ctx, repos, sale, inventory.MovementRefund, 1, userID)
		if err != nil {
			return err
		}
		if sale.CustomerID != nil {
			c, err := repos.Customers().FindByIDForPartner(ctx, partnerID, *sale.CustomerID)
			if err != nil {
				return err
			}
			c.RecordRefund(sale.Total)
			return repos.Customers().Save(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale refunded",
		zap.String("partner_id", partnerID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("reason", sale.RefundReason),
	)
	s.afterCommit(ctx, sale, touched)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByID returns a sale with its items
func (s *SaleService) GetByID(ctx context.Context, partnerID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForPartner(ctx, partnerID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List returns a page of sales, newest first by default
func (s *SaleService) List(ctx context.Context, partnerID uuid.UUID, filter SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	f := trade.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:     trade.SaleStatus(filter.Status),
		CustomerID: filter.CustomerID,
		From:       filter.From,
		To:         filter.To,
	}
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "sold_at", "desc"
	}
	f.Normalize()

	sales, total, err := s.saleRepo.FindAllForPartner(ctx, partnerID, f)
	if err != nil {
		return nil, err
	}
	items := make([]SaleResponse, len(sales))
	for i := range sales {
		items[i] = ToSaleResponse(&sales[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// SoldBetween returns every sale with from <= sold_at < to
func (s *SaleService) SoldBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	return s.saleRepo.FindSoldBetween(ctx, partnerID, from, to)
}

// RefundedBetween returns every sale with from <= refunded_at < to
func (s *SaleService) RefundedBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	return s.saleRepo.FindRefundedBetween(ctx, partnerID, from, to)
}

func (s *SaleService) applyCompletion(ctx context.Context, repos appinv.TransactionalRepositories, sale *trade.Sale, userID *uuid.UUID) ([]*catalog.Product, error) {
	if !s.trackStock {
		return nil, nil
	}
	touched, err := s.moveSaleStock(ctx, repos, sale, inventory.MovementSale, -1, userID)
	if err != nil {
		return nil, err
	}
	if sale.CustomerID != nil {
		c, err := repos.Customers().FindByIDForPartner(ctx, sale.PartnerID, *sale.CustomerID)
		if err != nil {
			return nil, err
		}
		c.RecordPurchase(sale.Total, sale.SoldAt)
		if err := repos.Customers().Save(ctx, c); err != nil {
			return nil, err
		}
	}
	return touched, nil
}

// moveSaleStock writes one movement per product, locking products in a
// stable order so concurrent sales cannot deadlock.
func (s *SaleService) moveSaleStock(ctx context.Context, repos appinv.TransactionalRepositories, sale *trade.Sale, mt inventory.MovementType, sign int, userID *uuid.UUID) ([]*catalog.Product, error) {
	lines := sale.StockLines()
	ids := make([]uuid.UUID, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	saleID := sale.ID
	touched := make([]*catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, _, err := appinv.MoveStock(ctx, repos, appinv.StockChange{
			PartnerID:     sale.PartnerID,
			ProductID:     id,
			Type:          mt,
			Quantity:      sign * lines[id],
			ReferenceType: inventory.ReferenceSale,
			ReferenceID:   &saleID,
			Note:          sale.Number,
			CreatedBy:     userID,
		})
		if err != nil {
			return nil, err
		}
		touched = append(touched, p)
	}
	return touched, nil
}

func (s *SaleService) resolveLines(ctx context.Context, partnerID uuid.UUID, items []SaleItemInput) ([]trade.SaleLine, error) {
	products := map[uuid.UUID]*catalog.Product{}
	if s.trackStock {
		var ids []uuid.UUID
		for _, it := range items {
			if it.ProductID != nil && it.Kind != string(trade.ItemKindService) {
				ids = append(ids, *it.ProductID)
			}
		}
		if len(ids) > 0 {
			found, err := s.productRepo.FindByIDs(ctx, partnerID, ids)
			if err != nil {
				return nil, err
			}
			for i := range found {
				products[found[i].ID] = &found[i]
			}
		}
	}

	lines := make([]trade.SaleLine, 0, len(items))
	for _, it := range items {
		line := trade.SaleLine{
			Kind:      trade.ItemKind(it.Kind),
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
		}
		if it.UnitPrice != nil {
			line.UnitPrice = *it.UnitPrice
		}
		if s.trackStock && line.Kind != trade.ItemKindService && it.ProductID != nil {
			p, ok := products[*it.ProductID]
			if !ok {
				return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found: "+it.ProductID.String())
			}
			if !p.IsActive() {
				return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not for sale: "+p.SKU)
			}
			line.SKU = p.SKU
			if line.Name == "" {
				line.Name = p.Name
			}
			if it.UnitPrice == nil {
				line.UnitPrice = p.SellingPrice
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *SaleService) taxRate(ctx context.Context, partnerID uuid.UUID) (decimal.Decimal, error) {
	if s.settings == nil {
		return decimal.Zero, nil
	}
	values, err := s.settings.Values(ctx, partnerID)
	if err != nil {
		return decimal.Zero, err
	}
	return settings.TaxRateOf(values), nil
}

func (s *SaleService) afterCommit(ctx context.Context, sale *trade.Sale, touched []*catalog.Product) {
	if s.productCache != nil && len(touched) > 0 {
		ids := make([]uuid.UUID, len(touched))
		for i, p := range touched {
			ids[i] = p.ID
		}
		s.productCache.Invalidate(ctx, sale.PartnerID, ids...)
	}

	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if s.metrics != nil {
		for _, e := range events {
			if e.EventType() == trade.EventTypeSaleCompleted {
				s.metrics.RecordSaleCompleted(ctx, sale.PartnerID.String(), string(sale.PaymentMethod), sale.Total)
			}
		}
	}
	events = append(events, appinv.CollectEvents(touched...)...)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish sale events", zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
}
