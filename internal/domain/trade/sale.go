package trade

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
	PaymentOther  PaymentMethod = "other"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile, PaymentOther:
		return true
	}
	return false
}

// ItemKind distinguishes stocked parts from labour lines
type ItemKind string

const (
	ItemKindPart    ItemKind = "part"
	ItemKindService ItemKind = "service"
)

// SaleItem is a line of a sale. Part lines reference a product and move stock.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Kind      ItemKind        `gorm:"type:varchar(10);not null;default:'part'" json:"kind"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SKU       string          `gorm:"column:sku;type:varchar(50)" json:"sku"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100)" json:"category"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// SaleLine is the input for adding an item to a sale
type SaleLine struct {
	Kind      ItemKind
	ProductID *uuid.UUID
	SKU       string
	Name      string
	Category  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Sale is a POS transaction. Subtotal is always the sum of item subtotals and
// Total = Subtotal - Discount + Tax.
type Sale struct {
	shared.PartnerAggregateRoot
	Number        string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CashierID     *uuid.UUID      `gorm:"type:uuid" json:"cashier_id,omitempty"`
	DeviceID      string          `gorm:"type:varchar(100)" json:"device_id"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"tax_rate"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	SoldAt        time.Time       `gorm:"not null;index" json:"sold_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	RefundReason  string          `gorm:"type:varchar(500)" json:"refund_reason,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// GenerateSaleNumber builds a human readable sale number for the given time
func GenerateSaleNumber(at time.Time) string {
	return fmt.Sprintf("S-%s-%s", at.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

// NewSaleInput carries everything needed to ring up a sale
type NewSaleInput struct {
	PartnerID     uuid.UUID
	Number        string
	PaymentMethod PaymentMethod
	SoldAt        time.Time
	Lines         []SaleLine
	Discount      decimal.Decimal
	TaxRate       decimal.Decimal
	Status        SaleStatus // pending or completed
}

// NewSale builds a sale from its lines and computes the totals.
// A sale created as completed raises sale.completed.
func NewSale(in NewSaleInput) (*Sale, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" || len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number must be 1-50 characters")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cash, card, mobile or other")
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_SALE", "Sale must contain at least one item")
	}
	if in.Discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}
	if in.Status == "" {
		in.Status = SaleStatusCompleted
	}
	if in.Status != SaleStatusPending && in.Status != SaleStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATUS", "A new sale must be pending or completed")
	}
	soldAt := in.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}

	s := &Sale{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(in.PartnerID),
		Number:               number,
		Items:                make([]SaleItem, 0, len(in.Lines)),
		Discount:             in.Discount,
		TaxRate:              in.TaxRate,
		PaymentMethod:        in.PaymentMethod,
		Status:               SaleStatusPending,
		SoldAt:               soldAt.UTC(),
	}
	for _, line := range in.Lines {
		item, err := newSaleItem(s.ID, line)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	if err := s.recalculate(); err != nil {
		return nil, err
	}
	if in.Status == SaleStatusCompleted {
		if err := s.Complete(); err != nil {
			return nil, err
		}
		s.Version = 1
	}
	return s, nil
}

func newSaleItem(saleID uuid.UUID, line SaleLine) (SaleItem, error) {
	if line.Kind == "" {
		line.Kind = ItemKindPart
	}
	if line.Kind != ItemKindPart && line.Kind != ItemKindService {
		return SaleItem{}, shared.NewDomainError("INVALID_ITEM_KIND", "Item kind must be part or service")
	}
	if line.Kind == ItemKindPart && (line.ProductID == nil || *line.ProductID == uuid.Nil) {
		return SaleItem{}, shared.NewDomainError("INVALID_PRODUCT", "Part lines require a product")
	}
	if strings.TrimSpace(line.Name) == "" {
		return SaleItem{}, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if line.Quantity <= 0 {
		return SaleItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if line.UnitPrice.IsNegative() {
		return SaleItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return SaleItem{
		ID:        uuid.New(),
		SaleID:    saleID,
		Kind:      line.Kind,
		ProductID: line.ProductID,
		SKU:       line.SKU,
		Name:      strings.TrimSpace(line.Name),
		Category:  strings.TrimSpace(line.Category),
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Subtotal:  line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}, nil
}

// Complete moves a pending sale to completed
func (s *Sale) Complete() error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete a sale in %s status", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError("EMPTY_SALE", "Sale must contain at least one item")
	}
	now := time.Now()
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleCompletedEvent(s))
	return nil
}

// Refund reverses a completed sale
func (s *Sale) Refund(reason string) error {
	if s.Status != SaleStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund a sale in %s status", s.Status))
	}
	if utf8.RuneCountInString(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Refund reason cannot exceed 500 characters")
	}
	now := time.Now().UTC()
	s.Status = SaleStatusRefunded
	s.RefundedAt = &now
	s.RefundReason = strings.TrimSpace(reason)
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleRefundedEvent(s))
	return nil
}

// ItemsSold returns the total quantity across all lines
func (s *Sale) ItemsSold() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// StockLines returns the per-product quantities that move stock
func (s *Sale) StockLines() map[uuid.UUID]int {
	lines := make(map[uuid.UUID]int)
	for _, item := range s.Items {
		if item.Kind == ItemKindPart && item.ProductID != nil {
			lines[*item.ProductID] += item.Quantity
		}
	}
	return lines
}

func (s *Sale) recalculate() error {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	if s.Discount.GreaterThan(subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the subtotal")
	}
	s.Subtotal = subtotal
	taxable := subtotal.Sub(s.Discount)
	s.Tax = taxable.Mul(s.TaxRate).Round(2)
	s.Total = taxable.Add(s.Tax)
	return nil
}
