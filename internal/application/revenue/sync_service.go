package revenue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesSource reads the sales rung up on this device
type SalesSource interface {
	SoldBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error)
	RefundedBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error)
}

// Pusher sends a rollup to the platform
type Pusher interface {
	PushRevenue(ctx context.Context, data *revenue.RevenueData) error
}

// ZoneSource resolves the partner's business time zone
type ZoneSource interface {
	Location(ctx context.Context, partnerID uuid.UUID, fallback *time.Location) *time.Location
}

// PushMetrics records agent push results
type PushMetrics interface {
	RecordRevenuePush(ctx context.Context, status string, n int)
}

// SyncConfig holds the agent's sync settings
type SyncConfig struct {
	PartnerID   uuid.UUID
	DeviceID    string
	MaxAttempts int
	BatchSize   int
	// Grace is how long after midnight yesterday is still recomputed
	Grace time.Duration
	// Location bounds business days when no zone source is set or it has none
	Location *time.Location
}

// SyncService computes the device's daily rollups and pushes them to the
// platform. Runs are serialized.
type SyncService struct {
	cfg     SyncConfig
	repo    revenue.Repository
	logRepo revenue.SyncLogRepository
	sales   SalesSource
	pusher  Pusher
	zones   ZoneSource
	metrics PushMetrics
	now     func() time.Time
	logger  *zap.Logger

	runMu sync.Mutex
	// refunds made before this instant have been folded into their day
	refundsScannedTo time.Time

	mu        sync.Mutex
	lastRunAt *time.Time
	lastError string
}

// NewSyncService creates a new SyncService
func NewSyncService(
	cfg SyncConfig,
	repo revenue.Repository,
	logRepo revenue.SyncLogRepository,
	sales SalesSource,
	pusher Pusher,
	logger *zap.Logger,
) *SyncService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Grace <= 0 {
		cfg.Grace = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		cfg:     cfg,
		repo:    repo,
		logRepo: logRepo,
		sales:   sales,
		pusher:  pusher,
		now:     time.Now,
		logger:  logger.With(zap.String("device_id", cfg.DeviceID)),
	}
}

// SetZoneSource makes business days follow the partner's business_timezone
func (s *SyncService) SetZoneSource(z ZoneSource) {
	s.zones = z
}

// Location returns the time zone business days are bounded in
func (s *SyncService) Location(ctx context.Context) *time.Location {
	if s.zones == nil {
		return s.cfg.Location
	}
	return s.zones.Location(ctx, s.cfg.PartnerID, s.cfg.Location)
}

// Today returns the current business day
func (s *SyncService) Today(ctx context.Context) string {
	return s.now().In(s.Location(ctx)).Format(revenue.DateLayout)
}

// SetMetrics sets the business metrics recorder
func (s *SyncService) SetMetrics(m PushMetrics) {
	s.metrics = m
}

// Compute aggregates the local sales of date and upserts the rollup.
// Changed figures put the row back to pending; identical figures keep its status.
func (s *SyncService) Compute(ctx context.Context, date string) (*RevenueResponse, error) {
	loc := s.Location(ctx)
	from, to, err := revenue.DayBounds(date, loc)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.SoldBetween(ctx, s.cfg.PartnerID, from, to)
	if err != nil {
		return nil, err
	}
	figures := revenue.Aggregate(sales, loc)
	now := s.now()

	row, err := s.repo.FindByKey(ctx, s.cfg.PartnerID, s.cfg.DeviceID, date)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		row, err = revenue.NewRevenueData(s.cfg.PartnerID, s.cfg.DeviceID, date, figures, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !row.ApplyFigures(figures, now) {
			resp := ToRevenueResponse(row)
			return &resp, nil
		}
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Debug("Revenue computed",
		zap.String("date", date),
		zap.Int("orders", row.OrderCount),
		zap.String("total", row.TotalRevenue.String()))
	resp := ToRevenueResponse(row)
	return &resp, nil
}

// ComputeRecent recomputes today, and yesterday while inside the grace
// period after midnight so late sales of the previous day are not lost.
// Days of sales refunded since the previous run are recomputed as well.
func (s *SyncService) ComputeRecent(ctx context.Context) error {
	loc := s.Location(ctx)
	now := s.now().In(loc)
	dates := []string{now.Format(revenue.DateLayout)}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if now.Sub(midnight) < s.cfg.Grace {
		dates = append(dates, now.AddDate(0, 0, -1).Format(revenue.DateLayout))
	}

	// After a restart the scan starts at yesterday's midnight
	from := s.refundsScannedTo
	if from.IsZero() {
		from = midnight.AddDate(0, 0, -1)
	}
	refunded, err := s.sales.RefundedBetween(ctx, s.cfg.PartnerID, from, now)
	if err != nil {
		return err
	}
	for i := range refunded {
		d := refunded[i].SoldAt.In(loc).Format(revenue.DateLayout)
		if !slices.Contains(dates, d) {
			dates = append(dates, d)
		}
	}

	for _, d := range dates {
		if _, err := s.Compute(ctx, d); err != nil {
			return err
		}
	}
	s.refundsScannedTo = now
	return nil
}

// Push sends every pending row and every failed row below the attempt limit
func (s *SyncService) Push(ctx context.Context) (*PushResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.push(ctx)
}

func (s *SyncService) push(ctx context.Context) (*PushResult, error) {
	rows, err := s.repo.FindSyncable(ctx, s.cfg.MaxAttempts, s.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	result := &PushResult{Status: string(revenue.SyncOutcomeSuccess)}

	// An idle run is logged too, with zero records
	log := revenue.StartSyncLog(s.cfg.PartnerID, s.cfg.DeviceID, revenue.SyncDirectionPush, EntityRevenue)
	for i := range rows {
		row := &rows[i]
		result.Attempted++
		if perr := s.pusher.PushRevenue(ctx, row); perr != nil {
			row.MarkFailed(perr.Error())
			log.Failed(perr)
			result.Failed++
			s.logger.Warn("Revenue push failed",
				zap.String("date", row.Date),
				zap.Int("attempts", row.SyncAttempts),
				zap.Error(perr))
		} else {
			row.MarkSynced(s.now())
			log.Succeeded()
			result.Synced++
		}
		if err := s.repo.Save(ctx, row); err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			break
		}
	}
	log.Finish()
	result.Status = string(log.Status)
	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Warn("Failed to write sync log", zap.Error(err))
	}
	s.recordRun(log.Error)
	if result.Attempted == 0 {
		s.logger.Debug("No revenue rows to push")
		return result, nil
	}
	if s.metrics != nil {
		s.metrics.RecordRevenuePush(ctx, string(revenue.SyncStatusSynced), result.Synced)
		s.metrics.RecordRevenuePush(ctx, string(revenue.SyncStatusFailed), result.Failed)
	}
	s.logger.Info("Revenue push finished",
		zap.Int("attempted", result.Attempted),
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed))
	return result, nil
}

// Run recomputes recent days and pushes. It is the scheduled sync task.
func (s *SyncService) Run(ctx context.Context) error {
	_, err := s.SyncNow(ctx)
	return err
}

// SyncNow recomputes recent days and pushes, reporting the push
func (s *SyncService) SyncNow(ctx context.Context) (*PushResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if err := s.ComputeRecent(ctx); err != nil {
		s.recordRun(err.Error())
		return nil, err
	}
	return s.push(ctx)
}

// Retry gives every failed row a fresh attempt budget and pushes
func (s *SyncService) Retry(ctx context.Context) (*PushResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	n, err := s.repo.ResetFailedAttempts(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Reset failed revenue rows", zap.Int64("rows", n))
	return s.push(ctx)
}

// Status reports row counts per sync status and the latest runs
func (s *SyncService) Status(ctx context.Context) (*SyncStatusReport, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = make(map[revenue.SyncStatus]int64)
	}
	for _, st := range []revenue.SyncStatus{revenue.SyncStatusPending, revenue.SyncStatusSynced, revenue.SyncStatusFailed} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	f := revenue.SyncLogFilter{
		Filter:   shared.Filter{Page: 1, PageSize: 10, OrderBy: "started_at", OrderDir: "desc"},
		DeviceID: s.cfg.DeviceID,
	}
	f.Normalize()
	logs, _, err := s.logRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	lastRunAt, lastError := s.lastRunAt, s.lastError
	s.mu.Unlock()
	return &SyncStatusReport{
		DeviceID:  s.cfg.DeviceID,
		Counts:    counts,
		LastRunAt: lastRunAt,
		LastError: lastError,
		Recent:    logs,
	}, nil
}

// Get returns the stored rollup of a date on this device
func (s *SyncService) Get(ctx context.Context, date string) (*RevenueResponse, error) {
	if _, err := revenue.ParseDate(date); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByKey(ctx, s.cfg.PartnerID, s.cfg.DeviceID, date)
	if err != nil {
		return nil, err
	}
	resp := ToRevenueResponse(row)
	return &resp, nil
}

func (s *SyncService) recordRun(errMsg string) {
	at := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = &at
	s.lastError = errMsg
}
