package catalog

import (
	"time"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU                string           `json:"sku" binding:"required,sku"`
	Name               string           `json:"name" binding:"required,min=1,max=200"`
	Brand              string           `json:"brand" binding:"max=100"`
	CategoryID         *uuid.UUID       `json:"category_id"`
	Description        string           `json:"description" binding:"max=2000"`
	Unit               string           `json:"unit" binding:"max=20"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price"`
	SellingPrice       *decimal.Decimal `json:"selling_price"`
	MinStock           int              `json:"min_stock" binding:"min=0"`
	CompatibleVehicles string           `json:"compatible_vehicles" binding:"max=2000"`
}

// UpdateProductRequest represents a request to update a product. Stock is
// changed only through sales, purchase orders and adjustments.
type UpdateProductRequest struct {
	Name               *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Brand              *string          `json:"brand" binding:"omitempty,max=100"`
	CategoryID         *uuid.UUID       `json:"category_id"`
	ClearCategory      bool             `json:"clear_category"`
	Description        *string          `json:"description" binding:"omitempty,max=2000"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price"`
	SellingPrice       *decimal.Decimal `json:"selling_price"`
	MinStock           *int             `json:"min_stock" binding:"omitempty,min=0"`
	CompatibleVehicles *string          `json:"compatible_vehicles" binding:"omitempty,max=2000"`
	Status             *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PartnerID          uuid.UUID       `json:"partner_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Brand              string          `json:"brand"`
	CategoryID         *uuid.UUID      `json:"category_id,omitempty"`
	Description        string          `json:"description"`
	Unit               string          `json:"unit"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	Stock              int             `json:"stock"`
	MinStock           int             `json:"min_stock"`
	LowStock           bool            `json:"low_stock"`
	CompatibleVehicles string          `json:"compatible_vehicles"`
	Status             string          `json:"status"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		PartnerID:          p.PartnerID,
		SKU:                p.SKU,
		Name:               p.Name,
		Brand:              p.Brand,
		CategoryID:         p.CategoryID,
		Description:        p.Description,
		Unit:               p.Unit,
		PurchasePrice:      p.PurchasePrice,
		SellingPrice:       p.SellingPrice,
		Stock:              p.Stock,
		MinStock:           p.MinStock,
		LowStock:           p.IsLowStock(),
		CompatibleVehicles: p.CompatibleVehicles,
		Status:             string(p.Status),
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	Brand      string     `form:"brand"`
	Status     string     `form:"status" binding:"omitempty,oneof=active inactive"`
	LowStock   bool       `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	PartnerID   uuid.UUID `json:"partner_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		PartnerID:   c.PartnerID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CreateServiceRequest represents a request to publish a workshop service
type CreateServiceRequest struct {
	Code            string          `json:"code" binding:"required,min=1,max=50"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Category        string          `json:"category" binding:"max=100"`
	Description     string          `json:"description" binding:"max=2000"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" binding:"min=0,max=1440"`
}

// UpdateServiceRequest represents a request to update a service
type UpdateServiceRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Category        string          `json:"category" binding:"max=100"`
	Description     string          `json:"description" binding:"max=2000"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" binding:"min=0,max=1440"`
	Active          *bool           `json:"active"`
}

// ServiceResponse represents a service offering in API responses
type ServiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	PartnerID       uuid.UUID       `json:"partner_id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToServiceResponse converts a domain ServiceOffering to ServiceResponse
func ToServiceResponse(s *catalog.ServiceOffering) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		PartnerID:       s.PartnerID,
		Code:            s.Code,
		Name:            s.Name,
		Category:        s.Category,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ServiceListFilter represents filter options for the service list.
// Without PartnerID every partner's active services are listed.
type ServiceListFilter struct {
	Search    string     `form:"search"`
	PartnerID *uuid.UUID `form:"partner_id"`
	Category  string     `form:"category"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
