package catalog

import (
	"strings"
	"time"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups parts and services (e.g. "Brakes", "Filters")
type Category struct {
	shared.PartnerAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;index" json:"code"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(partnerID uuid.UUID, code, name string) (*Category, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Category code must be 1-50 characters")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Category{
		PartnerAggregateRoot: shared.NewPartnerAggregateRoot(partnerID),
		Code:                 code,
		Name:                 strings.TrimSpace(name),
	}, nil
}

// Update changes the category name and description
func (c *Category) Update(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
