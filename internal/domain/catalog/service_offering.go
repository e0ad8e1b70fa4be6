package catalog

import (
	"strings"
	"time"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceOffering is a bookable workshop service (oil change, brake pads, ...)
// published by a service center.
type ServiceOffering struct {
	shared.PartnerAggregateRoot
	Code            string          `gorm:"type:varchar(50);not null;index" json:"code"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price"`
	DurationMinutes int             `gorm:"not null;default:0" json:"duration_minutes"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
}

// TableName returns the table name for GORM
func (ServiceOffering) TableName() string {
	return "service_offerings"
}

// NewServiceOffering creates a new active service
func NewServiceOffering(partnerID uuid.UUID, code, name string, price decimal.Decimal, durationMinutes int) (*ServiceOffering, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Service code must be 1-50 characters")
	}
	s := &ServiceOffering{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(partnerID),
		Code:                 code,
		Active:               true,
	}
	if err := s.Update(name, "", "", price, durationMinutes); err != nil {
		return nil, err
	}
	s.Version = 1
	return s, nil
}

// Update changes the service definition
func (s *ServiceOffering) Update(name, category, description string, price decimal.Decimal, durationMinutes int) error {
	if err := validateName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if durationMinutes < 0 || durationMinutes > 24*60 {
		return shared.NewDomainError("INVALID_DURATION", "Duration must be between 0 and 1440 minutes")
	}
	s.Name = strings.TrimSpace(name)
	s.Category = strings.TrimSpace(category)
	s.Description = description
	s.Price = price
	s.DurationMinutes = durationMinutes
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetActive toggles availability
func (s *ServiceOffering) SetActive(active bool) {
	s.Active = active
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
