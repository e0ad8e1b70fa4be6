package inventory

import (
	"context"
	"testing"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	products  *MockProductRepository
	movements *MockMovementRepository
	events    *MockEventPublisher
	cache     *recordingInvalidator
	svc       *StockService
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		products:  new(MockProductRepository),
		movements: new(MockMovementRepository),
		events:    new(MockEventPublisher),
		cache:     &recordingInvalidator{},
	}
	scope := NewNoOpTransactionScope(f.products, f.movements, nil, nil, nil)
	f.svc = NewStockService(scope, f.products, f.movements, nil)
	f.svc.SetEventPublisher(f.events)
	f.svc.SetProductCache(f.cache)
	return f
}

func newStockedProduct(t *testing.T, partnerID uuid.UUID, stock, minStock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(partnerID, "BRK-001", "Brake pad", "")
	require.NoError(t, err)
	p.Stock = stock
	p.MinStock = minStock
	return p
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture()
	partnerID, userID := uuid.New(), uuid.New()
	p := newStockedProduct(t, partnerID, 10, 2)

	f.products.On("FindByIDForUpdate", ctx, partnerID, p.ID).Return(p, nil)
	f.products.On("Save", ctx, p).Return(nil)
	f.movements.On("Create", ctx, mock.MatchedBy(func(ms []*inventory.StockMovement) bool {
		return len(ms) == 1 && ms[0].Quantity == 5 && ms[0].BalanceAfter == 15 &&
			ms[0].Type == inventory.MovementAdjustment && ms[0].ReferenceType == inventory.ReferenceManual
	})).Return(nil)

	resp, err := f.svc.Adjust(ctx, partnerID, userID, AdjustStockRequest{ProductID: p.ID, Quantity: 5, Note: "recount"})
	require.NoError(t, err)
	assert.Equal(t, 15, resp.BalanceAfter)
	assert.Equal(t, "recount", resp.Note)
	assert.Equal(t, &userID, resp.CreatedBy)
	assert.Equal(t, []uuid.UUID{p.ID}, f.cache.ids)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestStockService_AdjustBelowZero(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture()
	partnerID := uuid.New()
	p := newStockedProduct(t, partnerID, 3, 0)
	f.products.On("FindByIDForUpdate", ctx, partnerID, p.ID).Return(p, nil)

	_, err := f.svc.Adjust(ctx, partnerID, uuid.New(), AdjustStockRequest{ProductID: p.ID, Quantity: -4, Note: "damaged"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
	assert.Contains(t, de.Message, "BRK-001")
	f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.cache.ids)
}

func TestStockService_AdjustPublishesStockLow(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture()
	partnerID := uuid.New()
	p := newStockedProduct(t, partnerID, 6, 3)
	f.products.On("FindByIDForUpdate", ctx, partnerID, p.ID).Return(p, nil)
	f.products.On("Save", ctx, p).Return(nil)
	f.movements.On("Create", ctx, mock.Anything).Return(nil)
	f.events.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == catalog.EventTypeStockLow
	})).Return(nil)

	_, err := f.svc.Adjust(ctx, partnerID, uuid.New(), AdjustStockRequest{ProductID: p.ID, Quantity: -4, Note: "shrinkage"})
	require.NoError(t, err)
	f.events.AssertExpectations(t)
	assert.Empty(t, p.GetDomainEvents())
}

func TestStockService_ListMovements(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture()
	partnerID, productID := uuid.New(), uuid.New()
	mv, err := inventory.NewStockMovement(partnerID, productID, inventory.MovementSale, -2, 8)
	require.NoError(t, err)
	f.movements.On("FindAllForPartner", ctx, partnerID, mock.MatchedBy(func(mf inventory.MovementFilter) bool {
		return mf.OrderDir == "desc" && *mf.ProductID == productID && mf.PageSize == 20
	})).Return([]inventory.StockMovement{*mv}, int64(1), nil)

	page, err := f.svc.ListMovements(ctx, partnerID, MovementListFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, -2, page.Items[0].Quantity)
}

func TestStockService_LowStockWalksPages(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture()
	partnerID := uuid.New()

	first := make([]catalog.Product, 100)
	for i := range first {
		first[i] = *newStockedProduct(t, partnerID, 1, 2)
	}
	second := []catalog.Product{*newStockedProduct(t, partnerID, 0, 5)}
	f.products.On("FindAllForPartner", ctx, partnerID, mock.MatchedBy(func(pf catalog.ProductFilter) bool {
		return pf.LowStock && pf.Page == 1
	})).Return(first, int64(101), nil)
	f.products.On("FindAllForPartner", ctx, partnerID, mock.MatchedBy(func(pf catalog.ProductFilter) bool {
		return pf.LowStock && pf.Page == 2
	})).Return(second, int64(101), nil)

	items, err := f.svc.LowStock(ctx, partnerID)
	require.NoError(t, err)
	assert.Len(t, items, 101)
	assert.Equal(t, 5, items[100].Shortfall)
}
