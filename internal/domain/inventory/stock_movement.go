package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType classifies a stock change
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementRefund     MovementType = "refund"
	MovementAdjustment MovementType = "adjustment"
)

// Reference types linking a movement to the document that caused it
const (
	ReferenceSale          = "sale"
	ReferencePurchaseOrder = "purchase_order"
	ReferenceManual        = "manual"
)

// StockMovement is an append-only record of a stock change.
// Quantity is signed; BalanceAfter is the product stock once applied.
type StockMovement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"partner_id"`
	ProductID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Type          MovementType `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	BalanceAfter  int          `gorm:"not null" json:"balance_after"`
	ReferenceType string       `gorm:"type:varchar(30)" json:"reference_type"`
	ReferenceID   *uuid.UUID   `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Note          string       `gorm:"type:varchar(500)" json:"note,omitempty"`
	CreatedBy     *uuid.UUID   `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;index" json:"created_at"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a stock change. The sign of quantity must match the type.
func NewStockMovement(partnerID, productID uuid.UUID, mt MovementType, quantity, balanceAfter int) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be zero")
	}
	switch mt {
	case MovementPurchase, MovementRefund:
		if quantity < 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Inbound movements must be positive")
		}
	case MovementSale:
		if quantity > 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Sale movements must be negative")
		}
	case MovementAdjustment:
	default:
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if balanceAfter < 0 {
		return nil, shared.ErrInsufficientStock
	}
	return &StockMovement{
		ID:           uuid.New(),
		PartnerID:    partnerID,
		ProductID:    productID,
		Type:         mt,
		Quantity:     quantity,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now(),
	}, nil
}

// WithReference links the movement to its source document
func (m *StockMovement) WithReference(refType string, refID uuid.UUID) *StockMovement {
	m.ReferenceType = refType
	m.ReferenceID = &refID
	return m
}

// WithNote attaches a free text note
func (m *StockMovement) WithNote(note string) *StockMovement {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > 500 {
		note = note[:500]
	}
	m.Note = note
	return m
}

// WithCreatedBy records the acting user
func (m *StockMovement) WithCreatedBy(userID *uuid.UUID) *StockMovement {
	m.CreatedBy = userID
	return m
}
