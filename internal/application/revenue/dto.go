package revenue

import (
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngestRevenueRequest is a daily rollup pushed by an agent. The partner
// comes from the caller's token; any partner_id in the body is ignored.
type IngestRevenueRequest struct {
	DeviceID   string    `json:"device_id" binding:"required,min=1,max=100"`
	Date       string    `json:"date" binding:"required,iso_date"`
	ComputedAt time.Time `json:"computed_at" binding:"required"`
	revenue.Figures
}

// RevenueResponse represents a stored rollup in API responses
type RevenueResponse struct {
	ID         uuid.UUID          `json:"id"`
	PartnerID  uuid.UUID          `json:"partner_id"`
	DeviceID   string             `json:"device_id"`
	Date       string             `json:"date"`
	ComputedAt time.Time          `json:"computed_at"`
	SyncStatus revenue.SyncStatus `json:"sync_status"`
	SyncedAt   *time.Time         `json:"synced_at,omitempty"`
	LastError  string             `json:"last_sync_error,omitempty"`
	Attempts   int                `json:"sync_attempts"`
	UpdatedAt  time.Time          `json:"updated_at"`
	revenue.Figures
}

// ToRevenueResponse converts a domain RevenueData to RevenueResponse
func ToRevenueResponse(r *revenue.RevenueData) RevenueResponse {
	return RevenueResponse{
		ID:         r.ID,
		PartnerID:  r.PartnerID,
		DeviceID:   r.DeviceID,
		Date:       r.Date,
		ComputedAt: r.ComputedAt,
		SyncStatus: r.SyncStatus,
		SyncedAt:   r.SyncedAt,
		LastError:  r.LastSyncError,
		Attempts:   r.SyncAttempts,
		UpdatedAt:  r.UpdatedAt,
		Figures:    r.Figures,
	}
}

// IngestResult reports what an ingest did with the pushed rollup
type IngestResult struct {
	Outcome string          `json:"outcome"`
	Data    RevenueResponse `json:"data"`
}

// Ingest outcomes
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeStale     = "stale"
)

// RevenueListFilter represents filter options for revenue queries.
// PartnerID is honoured for admins only.
type RevenueListFilter struct {
	From      string     `form:"from" binding:"omitempty,iso_date"`
	To        string     `form:"to" binding:"omitempty,iso_date"`
	DeviceID  string     `form:"device_id"`
	PartnerID *uuid.UUID `form:"partner_id"`
	Status    string     `form:"status" binding:"omitempty,oneof=pending synced failed"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DayPoint is one day of a revenue series
type DayPoint struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	Orders      int             `json:"orders"`
	RefundCount int             `json:"refund_count"`
}

// RevenueSummary sums rollups over a date range
type RevenueSummary struct {
	From              string                     `json:"from"`
	To                string                     `json:"to"`
	Devices           int                        `json:"devices"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	TotalTax          decimal.Decimal            `json:"total_tax"`
	TotalDiscount     decimal.Decimal            `json:"total_discount"`
	OrderCount        int                        `json:"order_count"`
	ItemsSold         int                        `json:"items_sold"`
	RefundCount       int                        `json:"refund_count"`
	RefundAmount      decimal.Decimal            `json:"refund_amount"`
	AverageOrderValue decimal.Decimal            `json:"average_order_value"`
	PaymentBreakdown  map[string]decimal.Decimal `json:"payment_breakdown"`
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
	Days              []DayPoint                 `json:"days"`
}

// ExportResult is a rendered workbook and where it was archived
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchivedAt  string
}

// SyncLogListFilter represents filter options for the sync log list
type SyncLogListFilter struct {
	DeviceID  string     `form:"device_id"`
	PartnerID *uuid.UUID `form:"partner_id"`
	Status    string     `form:"status" binding:"omitempty,oneof=success partial failed"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SyncStatusReport describes the agent's sync state
type SyncStatusReport struct {
	DeviceID  string                       `json:"device_id"`
	Counts    map[revenue.SyncStatus]int64 `json:"counts"`
	LastRunAt *time.Time                   `json:"last_run_at,omitempty"`
	LastError string                       `json:"last_error,omitempty"`
	Recent    []revenue.SyncLog            `json:"recent_logs"`
}

// PushResult summarises one push run
type PushResult struct {
	Attempted int    `json:"attempted"`
	Synced    int    `json:"synced"`
	Failed    int    `json:"failed"`
	Status    string `json:"status"`
}
