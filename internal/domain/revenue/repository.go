package revenue

import (
	"context"

	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows revenue queries. Dates are inclusive YYYY-MM-DD strings.
// A nil PartnerID spans every partner.
type Filter struct {
	shared.Filter
	PartnerID *uuid.UUID
	DeviceID  string
	From      string
	To        string
	Status    SyncStatus
}

// Repository persists daily rollups
type Repository interface {
	FindByKey(ctx context.Context, partnerID uuid.UUID, deviceID, date string) (*RevenueData, error)
	FindAll(ctx context.Context, filter Filter) ([]RevenueData, int64, error)
	// FindSyncable returns pending rows and failed rows below maxAttempts, oldest date first
	FindSyncable(ctx context.Context, maxAttempts, limit int) ([]RevenueData, error)
	CountByStatus(ctx context.Context) (map[SyncStatus]int64, error)
	// ResetFailedAttempts clears the attempt counter of every failed row
	ResetFailedAttempts(ctx context.Context) (int64, error)
	Save(ctx context.Context, data *RevenueData) error
}

// SyncLogFilter narrows sync log queries. A nil PartnerID spans every partner.
type SyncLogFilter struct {
	shared.Filter
	PartnerID *uuid.UUID
	DeviceID  string
	Status    SyncOutcome
}

// SyncLogRepository persists sync logs
type SyncLogRepository interface {
	Create(ctx context.Context, log *SyncLog) error
	FindAll(ctx context.Context, filter SyncLogFilter) ([]SyncLog, int64, error)
}
