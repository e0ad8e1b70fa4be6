package inventory

import (
	"context"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductCacheInvalidator drops cached product reads after stock changes
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, partnerID uuid.UUID, ids ...uuid.UUID)
}

// StockService handles manual adjustments and stock queries
type StockService struct {
	txScope        TransactionScope
	productRepo    catalog.ProductRepository
	movementRepo   inventory.MovementRepository
	eventPublisher shared.EventPublisher
	productCache   ProductCacheInvalidator
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	txScope TransactionScope,
	productRepo catalog.ProductRepository,
	movementRepo inventory.MovementRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		txScope:      txScope,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetProductCache sets the product read cache to invalidate on stock changes
func (s *StockService) SetProductCache(c ProductCacheInvalidator) {
	s.productCache = c
}

// Adjust applies a signed manual correction
func (s *StockService) Adjust(ctx context.Context, partnerID, userID uuid.UUID, req AdjustStockRequest) (*MovementResponse, error) {
	if req.Quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be zero")
	}

	var (
		product  *catalog.Product
		movement *inventory.StockMovement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, movement, err = MoveStock(ctx, repos, StockChange{
			PartnerID:     partnerID,
			ProductID:     req.ProductID,
			Type:          inventory.MovementAdjustment,
			Quantity:      req.Quantity,
			ReferenceType: inventory.ReferenceManual,
			Note:          req.Note,
			CreatedBy:     &userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("partner_id", partnerID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("balance", product.Stock),
	)
	s.afterCommit(ctx, partnerID, product)
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// ListMovements returns a page of stock movements, newest first
func (s *StockService) ListMovements(ctx context.Context, partnerID uuid.UUID, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	f := inventory.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		ProductID: filter.ProductID,
		Type:      inventory.MovementType(filter.Type),
		From:      filter.From,
		To:        filter.To,
	}
	f.Normalize()

	movements, total, err := s.movementRepo.FindAllForPartner(ctx, partnerID, f)
	if err != nil {
		return nil, err
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// LowStock lists active products at or below their threshold
func (s *StockService) LowStock(ctx context.Context, partnerID uuid.UUID) ([]LowStockItem, error) {
	f := catalog.ProductFilter{
		Filter:   shared.Filter{Page: 1, PageSize: 100, OrderBy: "stock", OrderDir: "asc"},
		Status:   catalog.ProductStatusActive,
		LowStock: true,
	}
	var out []LowStockItem
	for {
		products, total, err := s.productRepo.FindAllForPartner(ctx, partnerID, f)
		if err != nil {
			return nil, err
		}
		for i := range products {
			out = append(out, ToLowStockItem(&products[i]))
		}
		if len(products) == 0 || int64(f.Page*f.PageSize) >= total {
			break
		}
		f.Page++
	}
	if out == nil {
		out = []LowStockItem{}
	}
	return out, nil
}

func (s *StockService) afterCommit(ctx context.Context, partnerID uuid.UUID, products ...*catalog.Product) {
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	if s.productCache != nil {
		s.productCache.Invalidate(ctx, partnerID, ids...)
	}
	events := CollectEvents(products...)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}
