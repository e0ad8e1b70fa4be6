package revenue

import (
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a business day
const DateLayout = "2006-01-02"

// maxSyncErrorLength is in characters
const maxSyncErrorLength = 1000

// SyncStatus tracks whether a locally computed rollup reached the platform
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// IsValid checks if the sync status is known
func (s SyncStatus) IsValid() bool {
	return s == SyncStatusPending || s == SyncStatusSynced || s == SyncStatusFailed
}

// Figures are the computed numbers of a daily rollup
type Figures struct {
	TotalRevenue      decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"total_revenue"`
	TotalTax          decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	TotalDiscount     decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"total_discount"`
	OrderCount        int                        `gorm:"not null;default:0" json:"order_count"`
	ItemsSold         int                        `gorm:"not null;default:0" json:"items_sold"`
	RefundCount       int                        `gorm:"not null;default:0" json:"refund_count"`
	RefundAmount      decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"refund_amount"`
	AverageOrderValue decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"average_order_value"`
	PaymentBreakdown  map[string]decimal.Decimal `gorm:"type:jsonb;serializer:json" json:"payment_breakdown"`
	CategoryBreakdown map[string]decimal.Decimal `gorm:"type:jsonb;serializer:json" json:"category_breakdown"`
	HourlyBreakdown   []decimal.Decimal          `gorm:"type:jsonb;serializer:json" json:"hourly_breakdown"`
}

// Equal reports whether two rollups carry the same numbers
func (f Figures) Equal(o Figures) bool {
	if !f.TotalRevenue.Equal(o.TotalRevenue) || !f.TotalTax.Equal(o.TotalTax) ||
		!f.TotalDiscount.Equal(o.TotalDiscount) || !f.RefundAmount.Equal(o.RefundAmount) ||
		!f.AverageOrderValue.Equal(o.AverageOrderValue) {
		return false
	}
	if f.OrderCount != o.OrderCount || f.ItemsSold != o.ItemsSold || f.RefundCount != o.RefundCount {
		return false
	}
	return equalBreakdown(f.PaymentBreakdown, o.PaymentBreakdown) &&
		equalBreakdown(f.CategoryBreakdown, o.CategoryBreakdown) &&
		equalSeries(f.HourlyBreakdown, o.HourlyBreakdown)
}

func equalBreakdown(a, b map[string]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

func equalSeries(a, b []decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// RevenueData is the daily revenue rollup of one POS device.
// (PartnerID, DeviceID, Date) is unique.
type RevenueData struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_revenue_partner_device_date,priority:1" json:"partner_id"`
	DeviceID      string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_revenue_partner_device_date,priority:2" json:"device_id"`
	Date          string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_revenue_partner_device_date,priority:3;index" json:"date"`
	Figures       `gorm:"embedded"`
	ComputedAt    time.Time  `gorm:"not null" json:"computed_at"`
	SyncStatus    SyncStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"sync_status"`
	SyncAttempts  int        `gorm:"not null;default:0" json:"sync_attempts"`
	LastSyncError string     `gorm:"type:text" json:"last_sync_error,omitempty"`
	SyncedAt      *time.Time `json:"synced_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for GORM
func (RevenueData) TableName() string {
	return "revenue_data"
}

// NewRevenueData creates a pending rollup
func NewRevenueData(partnerID uuid.UUID, deviceID, date string, figures Figures, computedAt time.Time) (*RevenueData, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	if deviceID == "" || len(deviceID) > 100 {
		return nil, shared.NewDomainError("INVALID_DEVICE", "Device ID must be 1-100 characters")
	}
	now := time.Now()
	return &RevenueData{
		ID:         uuid.New(),
		PartnerID:  partnerID,
		DeviceID:   deviceID,
		Date:       date,
		Figures:    figures,
		ComputedAt: computedAt,
		SyncStatus: SyncStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ApplyFigures replaces the numbers after a recompute. Changed numbers put the
// row back to pending with a fresh attempt budget; identical numbers keep the
// current status. Returns true when the figures changed.
func (r *RevenueData) ApplyFigures(f Figures, computedAt time.Time) bool {
	if r.Figures.Equal(f) {
		return false
	}
	r.Figures = f
	r.ComputedAt = computedAt
	r.SyncStatus = SyncStatusPending
	r.SyncAttempts = 0
	r.LastSyncError = ""
	r.UpdatedAt = time.Now()
	return true
}

// MarkSynced records a successful push
func (r *RevenueData) MarkSynced(at time.Time) {
	r.SyncStatus = SyncStatusSynced
	r.SyncAttempts++
	r.LastSyncError = ""
	r.SyncedAt = &at
	r.UpdatedAt = time.Now()
}

// MarkFailed records a failed push
func (r *RevenueData) MarkFailed(reason string) {
	if utf8.RuneCountInString(reason) > maxSyncErrorLength {
		reason = string([]rune(reason)[:maxSyncErrorLength])
	}
	r.SyncStatus = SyncStatusFailed
	r.SyncAttempts++
	r.LastSyncError = reason
	r.UpdatedAt = time.Now()
}

// ResetAttempts gives a failed row a fresh retry budget
func (r *RevenueData) ResetAttempts() {
	r.SyncAttempts = 0
	r.UpdatedAt = time.Now()
}

// NeedsSync reports whether the row should be pushed given the attempt limit
func (r *RevenueData) NeedsSync(maxAttempts int) bool {
	switch r.SyncStatus {
	case SyncStatusPending:
		return true
	case SyncStatusFailed:
		return r.SyncAttempts < maxAttempts
	}
	return false
}

// IsStaleAgainst reports whether r was computed before the stored row.
// Stale pushes are acknowledged without overwriting (last computed wins).
func (r *RevenueData) IsStaleAgainst(stored *RevenueData) bool {
	return stored != nil && r.ComputedAt.Before(stored.ComputedAt)
}

// ParseDate validates a YYYY-MM-DD business day
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// DayBounds returns [start, end) of the business day in loc
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}
