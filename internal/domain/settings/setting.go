package settings

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Well-known setting keys with typed validation
const (
	KeyTaxRate          = "tax_rate"
	KeyCurrency         = "currency"
	KeyReceiptFooter    = "receipt_footer"
	KeyLowStockAlerts   = "low_stock_alerts"
	KeyBusinessTimezone = "business_timezone"
)

var (
	keyPattern      = regexp.MustCompile(`^[a-z][a-z0-9_.]{0,99}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Setting is a key/value preference of a partner (or of a POS device when
// stored locally by the agent).
type Setting struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_setting_partner_key,priority:1" json:"-"`
	Key       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_setting_partner_key,priority:2" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// NewSetting validates and builds a setting
func NewSetting(partnerID uuid.UUID, key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if err := Validate(key, value); err != nil {
		return nil, err
	}
	return &Setting{
		ID:        uuid.New(),
		PartnerID: partnerID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}, nil
}

// Validate checks a key/value pair. Unknown keys accept any value up to 4KB.
func Validate(key, value string) error {
	if !keyPattern.MatchString(key) {
		return shared.NewDomainError("INVALID_SETTING_KEY", "Setting key must be lowercase letters, digits, '_' or '.' (max 100)")
	}
	if len(value) > 4096 {
		return shared.NewDomainError("INVALID_SETTING_VALUE", "Setting value cannot exceed 4096 characters")
	}
	switch key {
	case KeyTaxRate:
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return shared.NewDomainError("INVALID_SETTING_VALUE", "tax_rate must be a decimal between 0 and 1")
		}
	case KeyCurrency:
		if !currencyPattern.MatchString(value) {
			return shared.NewDomainError("INVALID_SETTING_VALUE", "currency must be a 3 letter ISO code")
		}
	case KeyReceiptFooter:
		if utf8.RuneCountInString(value) > 500 {
			return shared.NewDomainError("INVALID_SETTING_VALUE", "receipt_footer cannot exceed 500 characters")
		}
	case KeyLowStockAlerts:
		if value != "true" && value != "false" {
			return shared.NewDomainError("INVALID_SETTING_VALUE", "low_stock_alerts must be true or false")
		}
	case KeyBusinessTimezone:
		if _, err := time.LoadLocation(value); err != nil {
			return shared.NewDomainError("INVALID_SETTING_VALUE", "business_timezone must be an IANA time zone")
		}
	}
	return nil
}

// TaxRateOf reads the tax rate from a settings map, defaulting to zero
func TaxRateOf(values map[string]string) decimal.Decimal {
	if raw, ok := values[KeyTaxRate]; ok {
		if rate, err := decimal.NewFromString(raw); err == nil {
			return rate
		}
	}
	return decimal.Zero
}

// LowStockAlertsOf reports whether stock.low alerts are broadcast. Alerts are on
// unless low_stock_alerts is "false".
func LowStockAlertsOf(values map[string]string) bool {
	return values[KeyLowStockAlerts] != "false"
}

// LocationOf resolves business_timezone, or returns fallback when it is unset
// or unknown
func LocationOf(values map[string]string, fallback *time.Location) *time.Location {
	if name, ok := values[KeyBusinessTimezone]; ok && name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return fallback
}
