package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCachedProductService(t *testing.T) (*ProductService, *MockProductRepository, *MockCategoryRepository) {
	t.Helper()
	mc := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = mc.Close() })
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	svc := NewProductService(products, categories, cache.NewLoader(mc, time.Minute, nil), nil)
	return svc, products, categories
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	svc := NewProductService(products, categories, nil, nil)

	partnerID, userID := uuid.New(), uuid.New()
	price := decimal.RequireFromString("12.50")
	products.On("ExistsBySKU", ctx, partnerID, "BRK-001").Return(false, nil)
	products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(ctx, partnerID, userID, CreateProductRequest{
		SKU:          " brk-001 ",
		Name:         "Brake pad",
		Brand:        "bosch",
		SellingPrice: &price,
		MinStock:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, "BRK-001", resp.SKU)
	assert.Equal(t, "Bosch", resp.Brand)
	assert.Equal(t, "pcs", resp.Unit)
	assert.Equal(t, 0, resp.Stock)
	assert.True(t, price.Equal(resp.SellingPrice))
	assert.True(t, resp.PurchasePrice.IsZero())
	products.AssertExpectations(t)
}

func TestProductService_CreateDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewProductService(products, new(MockCategoryRepository), nil, nil)
	partnerID := uuid.New()
	products.On("ExistsBySKU", ctx, partnerID, "OIL-5W30").Return(true, nil)

	_, err := svc.Create(ctx, partnerID, uuid.New(), CreateProductRequest{SKU: "oil-5w30", Name: "Oil"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_CreateUnknownCategory(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	svc := NewProductService(products, categories, nil, nil)
	partnerID, categoryID := uuid.New(), uuid.New()
	products.On("ExistsBySKU", ctx, partnerID, "FLT-1").Return(false, nil)
	categories.On("FindByIDForPartner", ctx, partnerID, categoryID).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(ctx, partnerID, uuid.New(), CreateProductRequest{SKU: "FLT-1", Name: "Filter", CategoryID: &categoryID})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CATEGORY", de.Code)
}

func TestProductService_GetByIDIsCached(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCachedProductService(t)
	partnerID := uuid.New()
	p, err := catalog.NewProduct(partnerID, "SPK-4", "Spark plug", "")
	require.NoError(t, err)
	products.On("FindByIDForPartner", ctx, partnerID, p.ID).Return(p, nil).Once()

	first, err := svc.GetByID(ctx, partnerID, p.ID)
	require.NoError(t, err)
	second, err := svc.GetByID(ctx, partnerID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, first.SKU, second.SKU)
	products.AssertNumberOfCalls(t, "FindByIDForPartner", 1)
}

func TestProductService_UpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCachedProductService(t)
	partnerID := uuid.New()
	p, err := catalog.NewProduct(partnerID, "SPK-4", "Spark plug", "")
	require.NoError(t, err)
	products.On("FindByIDForPartner", ctx, partnerID, p.ID).Return(p, nil)
	products.On("Save", ctx, p).Return(nil)

	_, err = svc.GetByID(ctx, partnerID, p.ID)
	require.NoError(t, err)

	name := "Iridium spark plug"
	minStock := 5
	_, err = svc.Update(ctx, partnerID, p.ID, UpdateProductRequest{Name: &name, MinStock: &minStock})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, partnerID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Iridium spark plug", got.Name)
	assert.Equal(t, 5, got.MinStock)
	// initial load, update lookup, reload after invalidation
	products.AssertNumberOfCalls(t, "FindByIDForPartner", 3)
}

func TestProductService_UpdateKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewProductService(products, new(MockCategoryRepository), nil, nil)
	partnerID := uuid.New()
	p, err := catalog.NewProduct(partnerID, "BAT-70", "Battery 70Ah", "")
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(decimal.NewFromInt(60), decimal.NewFromInt(95)))
	p.Brand = "Varta"
	products.On("FindByIDForPartner", ctx, partnerID, p.ID).Return(p, nil)
	products.On("Save", ctx, p).Return(nil)

	selling := decimal.NewFromInt(99)
	status := "inactive"
	resp, err := svc.Update(ctx, partnerID, p.ID, UpdateProductRequest{SellingPrice: &selling, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Varta", resp.Brand)
	assert.True(t, decimal.NewFromInt(60).Equal(resp.PurchasePrice))
	assert.True(t, selling.Equal(resp.SellingPrice))
	assert.Equal(t, "inactive", resp.Status)
}

func TestProductService_ListIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCachedProductService(t)
	partnerID := uuid.New()
	p, err := catalog.NewProduct(partnerID, "WPR-1", "Wiper", "")
	require.NoError(t, err)
	products.On("FindAllForPartner", ctx, partnerID, mock.AnythingOfType("catalog.ProductFilter")).
		Return([]catalog.Product{*p}, int64(1), nil)
	products.On("ExistsBySKU", ctx, partnerID, "WPR-2").Return(false, nil)
	products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	page, err := svc.List(ctx, partnerID, ProductListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.PageSize)
	_, err = svc.List(ctx, partnerID, ProductListFilter{})
	require.NoError(t, err)
	products.AssertNumberOfCalls(t, "FindAllForPartner", 1)

	_, err = svc.Create(ctx, partnerID, uuid.New(), CreateProductRequest{SKU: "WPR-2", Name: "Wiper rear"})
	require.NoError(t, err)
	_, err = svc.List(ctx, partnerID, ProductListFilter{})
	require.NoError(t, err)
	products.AssertNumberOfCalls(t, "FindAllForPartner", 2)
}

func TestProductService_DeleteWithStock(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewProductService(products, new(MockCategoryRepository), nil, nil)
	partnerID := uuid.New()
	p, err := catalog.NewProduct(partnerID, "TYR-16", "Tyre 16in", "")
	require.NoError(t, err)
	p.Stock = 4
	products.On("FindByIDForPartner", ctx, partnerID, p.ID).Return(p, nil)

	err = svc.Delete(ctx, partnerID, p.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PRODUCT_HAS_STOCK", de.Code)
	products.AssertNotCalled(t, "DeleteForPartner", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newCachedProductService(t)
	partnerID, id := uuid.New(), uuid.New()
	products.On("FindByIDForPartner", ctx, partnerID, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(ctx, partnerID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.GetByID(ctx, partnerID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	products.AssertNumberOfCalls(t, "FindByIDForPartner", 2)
}
