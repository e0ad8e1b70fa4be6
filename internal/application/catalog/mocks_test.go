package catalog

import (
	"context"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, partnerID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, partnerID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, partnerID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, partnerID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, partnerID, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	args := m.Called(ctx, partnerID, id)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllForPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]catalog.Category, int64, error) {
	args := m.Called(ctx, partnerID, filter)
	return args.Get(0).([]catalog.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, partnerID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) CountProducts(ctx context.Context, partnerID, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, partnerID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	args := m.Called(ctx, partnerID, id)
	return args.Error(0)
}

// MockServiceOfferingRepository is a mock implementation of catalog.ServiceOfferingRepository
type MockServiceOfferingRepository struct {
	mock.Mock
}

func (m *MockServiceOfferingRepository) FindByIDForPartner(ctx context.Context, partnerID, id uuid.UUID) (*catalog.ServiceOffering, error) {
	args := m.Called(ctx, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ServiceOffering), args.Error(1)
}

func (m *MockServiceOfferingRepository) FindAll(ctx context.Context, filter catalog.ServiceOfferingFilter) ([]catalog.ServiceOffering, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ServiceOffering), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceOfferingRepository) ExistsByCode(ctx context.Context, partnerID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, partnerID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceOfferingRepository) Save(ctx context.Context, service *catalog.ServiceOffering) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceOfferingRepository) DeleteForPartner(ctx context.Context, partnerID, id uuid.UUID) error {
	args := m.Called(ctx, partnerID, id)
	return args.Error(0)
}
