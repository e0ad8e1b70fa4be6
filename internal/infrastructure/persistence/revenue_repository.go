package persistence

import (
	"context"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRevenueRepository implements revenue.Repository using GORM
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewGormRevenueRepository creates a new GormRevenueRepository
func NewGormRevenueRepository(db *gorm.DB) *GormRevenueRepository {
	return &GormRevenueRepository{db: db}
}

// FindByKey finds the rollup of a device for a day
func (r *GormRevenueRepository) FindByKey(ctx context.Context, partnerID uuid.UUID, deviceID, date string) (*revenue.RevenueData, error) {
	var data revenue.RevenueData
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND device_id = ? AND date = ?", partnerID, deviceID, date).
		First(&data).Error; err != nil {
		return nil, translate(err)
	}
	return &data, nil
}

// FindAll lists rollups matching the filter, newest day first by default
func (r *GormRevenueRepository) FindAll(ctx context.Context, filter revenue.Filter) ([]revenue.RevenueData, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&revenue.RevenueData{})
		if filter.PartnerID != nil {
			q = q.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.DeviceID != "" {
			q = q.Where("device_id = ?", filter.DeviceID)
		}
		if filter.From != "" {
			q = q.Where("date >= ?", filter.From)
		}
		if filter.To != "" {
			q = q.Where("date <= ?", filter.To)
		}
		if filter.Status != "" {
			q = q.Where("sync_status = ?", filter.Status)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []revenue.RevenueData
	if err := paginate(base(), filter.Filter, RevenueSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindSyncable returns rows waiting to be pushed
func (r *GormRevenueRepository) FindSyncable(ctx context.Context, maxAttempts, limit int) ([]revenue.RevenueData, error) {
	var rows []revenue.RevenueData
	if err := r.db.WithContext(ctx).
		Where("sync_status = ? OR (sync_status = ? AND sync_attempts < ?)",
			revenue.SyncStatusPending, revenue.SyncStatusFailed, maxAttempts).
		Order("date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByStatus counts rows per sync status
func (r *GormRevenueRepository) CountByStatus(ctx context.Context) (map[revenue.SyncStatus]int64, error) {
	var results []struct {
		SyncStatus revenue.SyncStatus
		Count      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&revenue.RevenueData{}).
		Select("sync_status, COUNT(*) AS count").
		Group("sync_status").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	counts := map[revenue.SyncStatus]int64{
		revenue.SyncStatusPending: 0,
		revenue.SyncStatusSynced:  0,
		revenue.SyncStatusFailed:  0,
	}
	for _, res := range results {
		counts[res.SyncStatus] = res.Count
	}
	return counts, nil
}

// ResetFailedAttempts gives every failed row a fresh attempt budget
func (r *GormRevenueRepository) ResetFailedAttempts(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&revenue.RevenueData{}).
		Where("sync_status = ?", revenue.SyncStatusFailed).
		Update("sync_attempts", 0)
	return result.RowsAffected, result.Error
}

// Save creates or updates a rollup
func (r *GormRevenueRepository) Save(ctx context.Context, data *revenue.RevenueData) error {
	return translate(r.db.WithContext(ctx).Save(data).Error)
}

// GormSyncLogRepository implements revenue.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Create appends a sync log
func (r *GormSyncLogRepository) Create(ctx context.Context, log *revenue.SyncLog) error {
	return translate(r.db.WithContext(ctx).Create(log).Error)
}

// FindAll lists sync logs, newest first by default
func (r *GormSyncLogRepository) FindAll(ctx context.Context, filter revenue.SyncLogFilter) ([]revenue.SyncLog, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&revenue.SyncLog{})
		if filter.PartnerID != nil {
			q = q.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.DeviceID != "" {
			q = q.Where("device_id = ?", filter.DeviceID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []revenue.SyncLog
	if err := paginate(base(), filter.Filter, SyncLogSortFields, "started_at").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

var (
	_ revenue.Repository        = (*GormRevenueRepository)(nil)
	_ revenue.SyncLogRepository = (*GormSyncLogRepository)(nil)
)
