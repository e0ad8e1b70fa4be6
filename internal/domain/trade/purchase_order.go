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

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusOrdered || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusOrdered:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	}
	return false
}

// PurchaseOrderItem is a line of a purchase order
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	SKU             string          `gorm:"column:sku;type:varchar(50)" json:"sku"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchaseOrder is a replenishment order placed with a supplier.
// Total is always the sum of item subtotals.
type PurchaseOrder struct {
	shared.PartnerAggregateRoot
	Number       string              `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	SupplierName string              `gorm:"type:varchar(200);not null" json:"supplier_name"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items"`
	Total        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ExpectedAt   *time.Time          `json:"expected_at,omitempty"`
	OrderedAt    *time.Time          `json:"ordered_at,omitempty"`
	ReceivedAt   *time.Time          `json:"received_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	Notes        string              `gorm:"type:text" json:"notes,omitempty"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// GeneratePurchaseOrderNumber builds a purchase order number for the given time
func GeneratePurchaseOrderNumber(at time.Time) string {
	return fmt.Sprintf("PO-%s-%s", at.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(partnerID uuid.UUID, number, supplierName string) (*PurchaseOrder, error) {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Purchase order number must be 1-50 characters")
	}
	supplierName = strings.TrimSpace(supplierName)
	if supplierName == "" || utf8.RuneCountInString(supplierName) > 200 {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name must be 1-200 characters")
	}
	return &PurchaseOrder{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(partnerID),
		Number:               number,
		SupplierName:         supplierName,
		Items:                make([]PurchaseOrderItem, 0),
		Total:                decimal.Zero,
		Status:               PurchaseOrderStatusDraft,
	}, nil
}

// AddItem adds a line to a draft order. Lines for the same product are merged.
func (o *PurchaseOrder) AddItem(productID uuid.UUID, sku, name string, quantity int, unitCost decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to a draft purchase order")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit cost cannot be negative")
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			if !o.Items[i].UnitCost.Equal(unitCost) {
				return shared.NewDomainError("CONFLICTING_COST", "Product already on the order with a different unit cost")
			}
			o.Items[i].Quantity += quantity
			o.Items[i].Subtotal = unitCost.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
			o.recalculate()
			return nil
		}
	}
	o.Items = append(o.Items, PurchaseOrderItem{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		ProductID:       productID,
		SKU:             sku,
		Name:            name,
		Quantity:        quantity,
		UnitCost:        unitCost,
		Subtotal:        unitCost.Mul(decimal.NewFromInt(int64(quantity))),
	})
	o.recalculate()
	return nil
}

// SetExpectedAt records when the delivery is expected
func (o *PurchaseOrder) SetExpectedAt(at *time.Time) {
	o.ExpectedAt = at
	o.UpdatedAt = time.Now()
}

// Submit sends the order to the supplier
func (o *PurchaseOrder) Submit() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Purchase order must contain at least one item")
	}
	if err := o.transition(PurchaseOrderStatusOrdered); err != nil {
		return err
	}
	at := o.UpdatedAt
	o.OrderedAt = &at
	return nil
}

// Receive marks the goods as delivered and raises purchase_order.received
func (o *PurchaseOrder) Receive() error {
	if err := o.transition(PurchaseOrderStatusReceived); err != nil {
		return err
	}
	at := o.UpdatedAt
	o.ReceivedAt = &at
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o))
	return nil
}

// Cancel abandons a draft or ordered purchase order
func (o *PurchaseOrder) Cancel() error {
	if err := o.transition(PurchaseOrderStatusCancelled); err != nil {
		return err
	}
	at := o.UpdatedAt
	o.CancelledAt = &at
	return nil
}

func (o *PurchaseOrder) transition(target PurchaseOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move purchase order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

func (o *PurchaseOrder) recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.Total = total
	o.UpdatedAt = time.Now()
}
