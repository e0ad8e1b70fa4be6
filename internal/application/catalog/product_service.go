package catalog

import (
	"context"
	"errors"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations.
// Reads go through the cache; every write invalidates the product and the
// cached list pages of its partner.
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	cache        ReadCache
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. A nil cache reads straight from the repository.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	cache ReadCache,
	logger *zap.Logger,
) *ProductService {
	if cache == nil {
		cache = directReads{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Create creates a new product with zero stock
func (s *ProductService) Create(ctx context.Context, partnerID, userID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(partnerID, req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	// Check if SKU already exists
	exists, err := s.productRepo.ExistsBySKU(ctx, partnerID, product.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}
	// Validate category exists (if provided)
	if err := s.checkCategory(ctx, partnerID, req.CategoryID); err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Brand, req.Description, req.CompatibleVehicles, req.CategoryID); err != nil {
		return nil, err
	}
	// Set prices
	purchase, selling := decimal.Zero, decimal.Zero
	if req.PurchasePrice != nil {
		purchase = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		selling = *req.SellingPrice
	}
	if err := product.SetPrices(purchase, selling); err != nil {
		return nil, err
	}
	// Set min stock
	if err := product.SetMinStock(req.MinStock); err != nil {
		return nil, err
	}
	product.SetCreatedBy(userID)

	// Save the product
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product)
	s.logger.Info("Product created",
		zap.String("partner_id", partnerID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns a product
func (s *ProductService) GetByID(ctx context.Context, partnerID, id uuid.UUID) (*ProductResponse, error) {
	var resp ProductResponse
	_, err := s.cache.Load(ctx, productKey(partnerID, id), &resp, func(ctx context.Context) (any, error) {
		p, err := s.productRepo.FindByIDForPartner(ctx, partnerID, id)
		if err != nil {
			return nil, err
		}
		return ToProductResponse(p), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBySKU returns a product by its SKU
func (s *ProductService) GetBySKU(ctx context.Context, partnerID uuid.UUID, sku string) (*ProductResponse, error) {
	p, err := s.productRepo.FindBySKU(ctx, partnerID, catalog.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, partnerID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	// Build domain filter
	f := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		CategoryID: filter.CategoryID,
		Brand:      filter.Brand,
		Status:     catalog.ProductStatus(filter.Status),
		LowStock:   filter.LowStock,
	}
	f.Normalize()

	var page shared.Paginated[ProductResponse]
	key := listKey(productListPrefix(partnerID), f)
	_, err := s.cache.Load(ctx, key, &page, func(ctx context.Context) (any, error) {
		products, total, err := s.productRepo.FindAllForPartner(ctx, partnerID, f)
		if err != nil {
			return nil, err
		}
		return shared.NewPaginated(ToProductResponses(products), total, f.Page, f.PageSize), nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Update changes the descriptive fields, prices, threshold and status
func (s *ProductService) Update(ctx context.Context, partnerID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	// Get existing product
	product, err := s.productRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}

	// Update descriptive fields, keeping what the request leaves out
	name, brand, desc, vehicles := product.Name, product.Brand, product.Description, product.CompatibleVehicles
	categoryID := product.CategoryID
	if req.Name != nil {
		name = *req.Name
	}
	if req.Brand != nil {
		brand = *req.Brand
	}
	if req.Description != nil {
		desc = *req.Description
	}
	if req.CompatibleVehicles != nil {
		vehicles = *req.CompatibleVehicles
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, partnerID, req.CategoryID); err != nil {
			return nil, err
		}
		categoryID = req.CategoryID
	}
	if req.ClearCategory {
		categoryID = nil
	}
	if err := product.Update(name, brand, desc, vehicles, categoryID); err != nil {
		return nil, err
	}

	// Update prices
	if req.PurchasePrice != nil || req.SellingPrice != nil {
		purchase, selling := product.PurchasePrice, product.SellingPrice
		if req.PurchasePrice != nil {
			purchase = *req.PurchasePrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(purchase, selling); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}
	// Update status
	if req.Status != nil {
		switch catalog.ProductStatus(*req.Status) {
		case catalog.ProductStatusActive:
			product.Activate()
		case catalog.ProductStatusInactive:
			product.Deactivate()
		}
	}

	// Save the product
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, partnerID, id uuid.UUID) error {
	// Verify product exists
	product, err := s.productRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return err
	}
	// Stocked products are deactivated, not deleted
	if product.Stock > 0 {
		return shared.NewDomainError("PRODUCT_HAS_STOCK", "Cannot delete a product that still has stock; deactivate it instead")
	}
	if err := s.productRepo.DeleteForPartner(ctx, partnerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, product)
	return nil
}

// Invalidate drops the cached copies of the given products and the partner's list pages
func (s *ProductService) Invalidate(ctx context.Context, partnerID uuid.UUID, ids ...uuid.UUID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(partnerID, id)
	}
	s.cache.Invalidate(ctx, keys, productListPrefix(partnerID))
}

func (s *ProductService) invalidate(ctx context.Context, p *catalog.Product) {
	s.Invalidate(ctx, p.PartnerID, p.ID)
}

func (s *ProductService) checkCategory(ctx context.Context, partnerID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByIDForPartner(ctx, partnerID, *categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}
