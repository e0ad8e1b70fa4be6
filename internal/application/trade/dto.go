package trade

import (
	"time"

	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// SaleItemInput represents a line of a new sale. For part lines the name,
// SKU and price default to the product's when tracked locally.
type SaleItemInput struct {
	Kind      string           `json:"kind" binding:"omitempty,oneof=part service"`
	ProductID *uuid.UUID       `json:"product_id"`
	SKU       string           `json:"sku" binding:"max=50"`
	Name      string           `json:"name" binding:"max=200"`
	Category  string           `json:"category" binding:"max=100"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest represents a request to ring up a sale
type CreateSaleRequest struct {
	Number        string          `json:"number" binding:"max=50"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash card mobile other"`
	Items         []SaleItemInput `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	Status        string          `json:"status" binding:"omitempty,oneof=pending completed"`
	SoldAt        *time.Time      `json:"sold_at"`
	DeviceID      string          `json:"device_id" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// RefundSaleRequest represents a request to refund a completed sale
type RefundSaleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending completed refunded"`
	CustomerID *uuid.UUID `form:"customer_id"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	PartnerID     uuid.UUID          `json:"partner_id"`
	Number        string             `json:"number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CashierID     *uuid.UUID         `json:"cashier_id,omitempty"`
	DeviceID      string             `json:"device_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	SoldAt        time.Time          `json:"sold_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	RefundedAt    *time.Time         `json:"refunded_at,omitempty"`
	RefundReason  string             `json:"refund_reason,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{
			ID:        it.ID,
			Kind:      string(it.Kind),
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return SaleResponse{
		ID:            s.ID,
		PartnerID:     s.PartnerID,
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		DeviceID:      s.DeviceID,
		Items:         items,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		TaxRate:       s.TaxRate,
		Tax:           s.Tax,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Status:        string(s.Status),
		SoldAt:        s.SoldAt,
		CompletedAt:   s.CompletedAt,
		RefundedAt:    s.RefundedAt,
		RefundReason:  s.RefundReason,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
	}
}

// ==================== Purchase Order DTOs ====================

// PurchaseOrderItemInput represents an item in the create order request
type PurchaseOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName string                   `json:"supplier_name" binding:"required,min=1,max=200"`
	ExpectedAt   *time.Time               `json:"expected_at"`
	Items        []PurchaseOrderItemInput `json:"items" binding:"dive"`
	Notes        string                   `json:"notes" binding:"max=2000"`
}

// AddPurchaseOrderItemRequest represents a request to add an item to a draft order
type AddPurchaseOrderItemRequest = PurchaseOrderItemInput

// PurchaseOrderListFilter represents filter options for the purchase order list
type PurchaseOrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft ordered received cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderItemResponse represents an order line in API responses
type PurchaseOrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	PartnerID    uuid.UUID                   `json:"partner_id"`
	Number       string                      `json:"number"`
	SupplierName string                      `json:"supplier_name"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	Total        decimal.Decimal             `json:"total"`
	Status       string                      `json:"status"`
	ExpectedAt   *time.Time                  `json:"expected_at,omitempty"`
	OrderedAt    *time.Time                  `json:"ordered_at,omitempty"`
	ReceivedAt   *time.Time                  `json:"received_at,omitempty"`
	CancelledAt  *time.Time                  `json:"cancelled_at,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Subtotal:  it.Subtotal,
		}
	}
	return PurchaseOrderResponse{
		ID:           o.ID,
		PartnerID:    o.PartnerID,
		Number:       o.Number,
		SupplierName: o.SupplierName,
		Items:        items,
		Total:        o.Total,
		Status:       string(o.Status),
		ExpectedAt:   o.ExpectedAt,
		OrderedAt:    o.OrderedAt,
		ReceivedAt:   o.ReceivedAt,
		CancelledAt:  o.CancelledAt,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
