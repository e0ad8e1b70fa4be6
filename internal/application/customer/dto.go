package customer

import (
	"time"

	"github.com/autocare/platform/internal/domain/customer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Phone        string `json:"phone" binding:"max=50"`
	Email        string `json:"email" binding:"omitempty,email"`
	VehiclePlate string `json:"vehicle_plate" binding:"max=20"`
	VehicleModel string `json:"vehicle_model" binding:"max=100"`
	Notes        string `json:"notes" binding:"max=2000"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Phone        *string `json:"phone" binding:"omitempty,max=50"`
	Email        *string `json:"email" binding:"omitempty"`
	VehiclePlate *string `json:"vehicle_plate" binding:"omitempty,max=20"`
	VehicleModel *string `json:"vehicle_model" binding:"omitempty,max=100"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           uuid.UUID       `json:"id"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	VehiclePlate string          `json:"vehicle_plate"`
	VehicleModel string          `json:"vehicle_model"`
	Notes        string          `json:"notes"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	VisitCount   int             `json:"visit_count"`
	LastVisitAt  *time.Time      `json:"last_visit_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           c.ID,
		PartnerID:    c.PartnerID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		VehiclePlate: c.VehiclePlate,
		VehicleModel: c.VehicleModel,
		Notes:        c.Notes,
		TotalSpent:   c.TotalSpent,
		VisitCount:   c.VisitCount,
		LastVisitAt:  c.LastVisitAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
