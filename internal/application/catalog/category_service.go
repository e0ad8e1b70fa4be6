package catalog

import (
	"context"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, partnerID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(partnerID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	// Check if code already exists
	exists, err := s.categoryRepo.ExistsByCode(ctx, partnerID, category.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}
	// Set optional fields
	category.Description = req.Description
	// Save the category
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID returns a category
func (s *CategoryService) GetByID(ctx context.Context, partnerID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List returns a page of categories
func (s *CategoryService) List(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) (*shared.Paginated[CategoryResponse], error) {
	filter.Normalize()
	categories, total, err := s.categoryRepo.FindAllForPartner(ctx, partnerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = ToCategoryResponse(&categories[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, partnerID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	// Get existing category
	category, err := s.categoryRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category that no product references
func (s *CategoryService) Delete(ctx context.Context, partnerID, id uuid.UUID) error {
	// Verify category exists
	if _, err := s.categoryRepo.FindByIDForPartner(ctx, partnerID, id); err != nil {
		return err
	}
	// Check if category has products
	count, err := s.categoryRepo.CountProducts(ctx, partnerID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products")
	}
	return s.categoryRepo.DeleteForPartner(ctx, partnerID, id)
}
