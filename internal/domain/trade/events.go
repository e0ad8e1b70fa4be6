package trade

import (
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types raised by the trade aggregates
const (
	EventTypeSaleCompleted         = "sale.completed"
	EventTypeSaleRefunded          = "sale.refunded"
	EventTypePurchaseOrderReceived = "purchase_order.received"
)

// SaleCompletedEvent is raised when a sale is paid
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	Number        string          `json:"number"`
	Total         decimal.Decimal `json:"total"`
	ItemsSold     int             `json:"items_sold"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
}

// NewSaleCompletedEvent creates a sale.completed event
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, "Sale", s.ID, s.PartnerID),
		SaleID:          s.ID,
		Number:          s.Number,
		Total:           s.Total,
		ItemsSold:       s.ItemsSold(),
		PaymentMethod:   s.PaymentMethod,
		CustomerID:      s.CustomerID,
	}
}

// SaleRefundedEvent is raised when a completed sale is refunded
type SaleRefundedEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID       `json:"sale_id"`
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	Reason string          `json:"reason"`
}

// NewSaleRefundedEvent creates a sale.refunded event
func NewSaleRefundedEvent(s *Sale) *SaleRefundedEvent {
	return &SaleRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRefunded, "Sale", s.ID, s.PartnerID),
		SaleID:          s.ID,
		Number:          s.Number,
		Total:           s.Total,
		Reason:          s.RefundReason,
	}
}

// PurchaseOrderReceivedEvent is raised when goods arrive
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	Number          string          `json:"number"`
	SupplierName    string          `json:"supplier_name"`
	Total           decimal.Decimal `json:"total"`
}

// NewPurchaseOrderReceivedEvent creates a purchase_order.received event
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, "PurchaseOrder", o.ID, o.PartnerID),
		PurchaseOrderID: o.ID,
		Number:          o.Number,
		SupplierName:    o.SupplierName,
		Total:           o.Total,
	}
}
