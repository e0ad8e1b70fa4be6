package customer

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a vehicle owner buying parts or services from a partner
type Customer struct {
	shared.PartnerAggregateRoot
	Name         string          `gorm:"type:varchar(200);not null" json:"name"`
	Phone        string          `gorm:"type:varchar(50);index" json:"phone"`
	Email        string          `gorm:"type:varchar(200)" json:"email"`
	VehiclePlate string          `gorm:"type:varchar(20);index" json:"vehicle_plate"`
	VehicleModel string          `gorm:"type:varchar(100)" json:"vehicle_model"`
	Notes        string          `gorm:"type:text" json:"notes"`
	TotalSpent   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_spent"`
	VisitCount   int             `gorm:"not null;default:0" json:"visit_count"`
	LastVisitAt  *time.Time      `json:"last_visit_at,omitempty"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(partnerID uuid.UUID, name, phone string) (*Customer, error) {
	c := &Customer{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(partnerID),
		TotalSpent:           decimal.Zero,
	}
	if err := c.Update(name, phone, "", "", "", ""); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update replaces the contact and vehicle details
func (c *Customer) Update(name, phone, email, plate, model, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	c.Name = name
	c.Phone = strings.TrimSpace(phone)
	c.Email = email
	c.VehiclePlate = NormalizePlate(plate)
	c.VehicleModel = strings.TrimSpace(model)
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// RecordPurchase adds a completed sale to the customer's history
func (c *Customer) RecordPurchase(amount decimal.Decimal, at time.Time) {
	c.TotalSpent = c.TotalSpent.Add(amount)
	c.VisitCount++
	c.LastVisitAt = &at
	c.UpdatedAt = time.Now()
}

// RecordRefund takes a refunded amount back out of the history
func (c *Customer) RecordRefund(amount decimal.Decimal) {
	c.TotalSpent = c.TotalSpent.Sub(amount)
	if c.TotalSpent.IsNegative() {
		c.TotalSpent = decimal.Zero
	}
	c.UpdatedAt = time.Now()
}

// NormalizePlate uppercases a plate and strips spaces and dashes
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(plate)
	return strings.NewReplacer(" ", "", "-", "").Replace(plate)
}
