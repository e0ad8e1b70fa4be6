package catalog

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._/-]{0,49}$`)

// Product is an auto part sold by a shop. Stock never goes below zero.
type Product struct {
	shared.PartnerAggregateRoot
	SKU                string          `gorm:"column:sku;type:varchar(50);not null;index" json:"sku"`
	Name               string          `gorm:"type:varchar(200);not null" json:"name"`
	Brand              string          `gorm:"type:varchar(100);index" json:"brand"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Description        string          `gorm:"type:text" json:"description"`
	Unit               string          `gorm:"type:varchar(20);not null" json:"unit"`
	PurchasePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"purchase_price"`
	SellingPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"selling_price"`
	Stock              int             `gorm:"not null;default:0" json:"stock"`
	MinStock           int             `gorm:"not null;default:0" json:"min_stock"`
	CompatibleVehicles string          `gorm:"type:text" json:"compatible_vehicles"`
	Status             ProductStatus   `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product with zero stock
func NewProduct(partnerID uuid.UUID, sku, name, unit string) (*Product, error) {
	sku = NormalizeSKU(sku)
	if !skuPattern.MatchString(sku) {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be 1-50 characters of A-Z, 0-9, '.', '_', '/' or '-'")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "pcs"
	}
	if utf8.RuneCountInString(unit) > 20 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return &Product{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(partnerID),
		SKU:                  sku,
		Name:                 strings.TrimSpace(name),
		Unit:                 unit,
		PurchasePrice:        decimal.Zero,
		SellingPrice:         decimal.Zero,
		Status:               ProductStatusActive,
	}, nil
}

// ValidSKU reports whether sku is well formed once normalized
func ValidSKU(sku string) bool {
	return skuPattern.MatchString(NormalizeSKU(sku))
}

// NormalizeSKU uppercases and trims a SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// NormalizeBrand collapses whitespace and title-cases a brand name
func NormalizeBrand(brand string) string {
	brand = strings.Join(strings.Fields(brand), " ")
	if brand == "" {
		return ""
	}
	return cases.Title(language.Und).String(brand)
}

// Update updates the descriptive fields of the product
func (p *Product) Update(name, brand, description, compatibleVehicles string, categoryID *uuid.UUID) error {
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Brand = NormalizeBrand(brand)
	p.Description = description
	p.CompatibleVehicles = strings.TrimSpace(compatibleVehicles)
	p.CategoryID = categoryID
	p.touch()
	return nil
}

// SetPrices sets purchase and selling prices
func (p *Product) SetPrices(purchase, selling decimal.Decimal) error {
	if purchase.IsNegative() || selling.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.PurchasePrice = purchase
	p.SellingPrice = selling
	p.touch()
	return nil
}

// SetMinStock sets the low stock threshold
func (p *Product) SetMinStock(minStock int) error {
	if minStock < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	p.MinStock = minStock
	p.touch()
	return nil
}

// Activate marks the product as sellable
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.touch()
}

// Deactivate hides the product from the POS
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.touch()
}

// IsActive returns true if the product is sellable
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ChangeStock applies a signed quantity change. The result must stay >= 0.
// A stock.low event is raised when the change takes stock to or below MinStock.
func (p *Product) ChangeStock(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	next := p.Stock + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	wasLow := p.IsLowStock()
	p.Stock = next
	p.touch()
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockLowEvent(p))
	}
	return nil
}

// IsLowStock reports whether stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
