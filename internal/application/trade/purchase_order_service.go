package trade

import (
	"context"
	"time"

	appinv "github.com/autocare/platform/internal/application/inventory"
	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles supplier orders. Receiving an order adds
// stock and refreshes each product's purchase price.
type PurchaseOrderService struct {
	txScope        appinv.TransactionScope
	orderRepo      trade.PurchaseOrderRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	productCache   appinv.ProductCacheInvalidator
	now            func() time.Time
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	txScope appinv.TransactionScope,
	orderRepo trade.PurchaseOrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		txScope:     txScope,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetProductCache sets the product read cache to invalidate on stock changes
func (s *PurchaseOrderService) SetProductCache(c appinv.ProductCacheInvalidator) {
	s.productCache = c
}

// Create creates a draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, partnerID, userID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := trade.NewPurchaseOrder(partnerID, trade.GeneratePurchaseOrderNumber(s.now()), req.SupplierName)
	if err != nil {
		return nil, err
	}
	// Set optional fields
	order.SetExpectedAt(req.ExpectedAt)
	order.Notes = req.Notes
	order.SetCreatedBy(userID)

	// Add line items
	if err := s.addItems(ctx, order, req.Items); err != nil {
		return nil, err
	}
	// Save the order
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("Purchase order created",
		zap.String("partner_id", partnerID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
	)
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// AddItem adds a line to a draft order
func (s *PurchaseOrderService) AddItem(ctx context.Context, partnerID, orderID uuid.UUID, req AddPurchaseOrderItemRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForPartner(ctx, partnerID, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.addItems(ctx, order, []PurchaseOrderItemInput{req}); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID returns a purchase order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, partnerID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForPartner(ctx, partnerID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List returns a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, partnerID uuid.UUID, filter PurchaseOrderListFilter) (*shared.Paginated[PurchaseOrderResponse], error) {
	f := trade.PurchaseOrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: trade.PurchaseOrderStatus(filter.Status),
	}
	f.Normalize()

	orders, total, err := s.orderRepo.FindAllForPartner(ctx, partnerID, f)
	if err != nil {
		return nil, err
	}
	items := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToPurchaseOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Submit sends a draft order to the supplier
func (s *PurchaseOrderService) Submit(ctx context.Context, partnerID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, partnerID, orderID, (*trade.PurchaseOrder).Submit)
}

// Cancel abandons a draft or ordered purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, partnerID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, partnerID, orderID, (*trade.PurchaseOrder).Cancel)
}

// Receive books the delivery: every line adds stock with a purchase movement
// and sets the product purchase price to the line's unit cost.
func (s *PurchaseOrderService) Receive(ctx context.Context, partnerID, orderID, userID uuid.UUID) (*PurchaseOrderResponse, error) {
	var (
		order   *trade.PurchaseOrder
		touched []*catalog.Product
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForPartner(ctx, partnerID, orderID)
		if err != nil {
			return err
		}
		// Mark received
		if err := order.Receive(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}

		// Book stock and purchase price per line
		ref := order.ID
		for _, item := range order.Items {
			p, _, err := appinv.MoveStock(ctx, repos, appinv.StockChange{
				PartnerID:     partnerID,
				ProductID:     item.ProductID,
				Type:          inventory.MovementPurchase,
				Quantity:      item.Quantity,
				ReferenceType: inventory.ReferencePurchaseOrder,
				ReferenceID:   &ref,
				Note:          order.Number,
				CreatedBy:     &userID,
			})
			if err != nil {
				return err
			}
			if err := p.SetPrices(item.UnitCost, p.SellingPrice); err != nil {
				return err
			}
			if err := repos.Products().Save(ctx, p); err != nil {
				return err
			}
			touched = append(touched, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order received",
		zap.String("partner_id", partnerID.String()),
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(order.Items)),
	)

	// Invalidate cached products
	if s.productCache != nil && len(touched) > 0 {
		ids := make([]uuid.UUID, len(touched))
		for i, p := range touched {
			ids[i] = p.ID
		}
		s.productCache.Invalidate(ctx, partnerID, ids...)
	}
	// Publish order and stock events
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	events = append(events, appinv.CollectEvents(touched...)...)
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish purchase order events", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes a draft or cancelled order
func (s *PurchaseOrderService) Delete(ctx context.Context, partnerID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForPartner(ctx, partnerID, orderID)
	if err != nil {
		return err
	}
	// Only drafts and cancelled orders can go
	if order.Status != trade.PurchaseOrderStatusDraft && order.Status != trade.PurchaseOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Only draft or cancelled purchase orders can be deleted")
	}
	return s.orderRepo.DeleteForPartner(ctx, partnerID, orderID)
}

func (s *PurchaseOrderService) transition(ctx context.Context, partnerID, orderID uuid.UUID, apply func(*trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForPartner(ctx, partnerID, orderID)
	if err != nil {
		return nil, err
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func (s *PurchaseOrderService) addItems(ctx context.Context, order *trade.PurchaseOrder, items []PurchaseOrderItemInput) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	// Load all products in one query
	found, err := s.productRepo.FindByIDs(ctx, order.PartnerID, ids)
	if err != nil {
		return err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return shared.NewDomainError("INVALID_PRODUCT", "Product not found: "+it.ProductID.String())
		}
		if err := order.AddItem(p.ID, p.SKU, p.Name, it.Quantity, it.UnitCost); err != nil {
			return err
		}
	}
	return nil
}
