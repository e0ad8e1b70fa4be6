package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
)

// PartnerType distinguishes the kinds of business accounts on the platform
type PartnerType string

const (
	PartnerTypeShop          PartnerType = "shop"
	PartnerTypeServiceCenter PartnerType = "service_center"
)

// PartnerStatus represents the status of a partner account
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

var partnerCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,31}$`)

// Partner is a business account (auto parts shop or service center).
// Every partner-scoped record carries the partner ID.
type Partner struct {
	shared.BaseAggregateRoot
	Code    string        `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name    string        `gorm:"type:varchar(200);not null" json:"name"`
	Type    PartnerType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Phone   string        `gorm:"type:varchar(50)" json:"phone"`
	Email   string        `gorm:"type:varchar(200)" json:"email"`
	Address string        `gorm:"type:varchar(500)" json:"address"`
	City    string        `gorm:"type:varchar(100);index" json:"city"`
	Status  PartnerStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

// NewPartner creates a new active partner
func NewPartner(code, name string, partnerType PartnerType) (*Partner, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !partnerCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Partner code must be 2-32 characters of A-Z, 0-9, '_' or '-'")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if partnerType != PartnerTypeShop && partnerType != PartnerTypeServiceCenter {
		return nil, shared.NewDomainError("INVALID_TYPE", "Partner type must be shop or service_center")
	}
	return &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Type:              partnerType,
		Status:            PartnerStatusActive,
	}, nil
}

// Update changes the descriptive fields of the partner
func (p *Partner) Update(name, phone, email, address, city string) error {
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Phone = strings.TrimSpace(phone)
	p.Email = strings.ToLower(strings.TrimSpace(email))
	p.Address = strings.TrimSpace(address)
	p.City = strings.TrimSpace(city)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Suspend blocks logins for every user of the partner
func (p *Partner) Suspend() error {
	if p.Status == PartnerStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Partner is already suspended")
	}
	p.Status = PartnerStatusSuspended
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate re-enables a suspended partner
func (p *Partner) Activate() error {
	if p.Status == PartnerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Partner is already active")
	}
	p.Status = PartnerStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the partner is active
func (p *Partner) IsActive() bool {
	return p.Status == PartnerStatusActive
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
