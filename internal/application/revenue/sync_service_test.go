package revenue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	svc     *SyncService
	repo    *MockRevenueRepository
	logs    *MockSyncLogRepository
	sales   *MockSalesSource
	pusher  *MockPusher
	metrics *recordingMetrics
	partner uuid.UUID
}

func newSyncFixture(now time.Time) *syncFixture {
	f := &syncFixture{
		repo:    new(MockRevenueRepository),
		logs:    new(MockSyncLogRepository),
		sales:   new(MockSalesSource),
		pusher:  new(MockPusher),
		metrics: newRecordingMetrics(),
		partner: uuid.New(),
	}
	f.svc = NewSyncService(SyncConfig{
		PartnerID:   f.partner,
		DeviceID:    "pos-1",
		MaxAttempts: 3,
		BatchSize:   10,
		Location:    time.UTC,
	}, f.repo, f.logs, f.sales, f.pusher, nil)
	f.svc.now = func() time.Time { return now }
	f.svc.SetMetrics(f.metrics)
	return f
}

func completedSale(t *testing.T, partnerID uuid.UUID, total int64, at time.Time) trade.Sale {
	t.Helper()
	productID := uuid.New()
	s, err := trade.NewSale(trade.NewSaleInput{
		PartnerID:     partnerID,
		Number:        trade.GenerateSaleNumber(at),
		PaymentMethod: trade.PaymentCash,
		SoldAt:        at,
		Lines: []trade.SaleLine{{
			ProductID: &productID, Name: "Oil filter", Category: "filters",
			Quantity: 1, UnitPrice: decimal.NewFromInt(total),
		}},
		Status: trade.SaleStatusCompleted,
	})
	require.NoError(t, err)
	return *s
}

func TestSyncService_ComputeCreatesPendingRow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.sales.On("SoldBetween", ctx, f.partner, start, start.AddDate(0, 0, 1)).Return([]trade.Sale{
		completedSale(t, f.partner, 40, now.Add(-2*time.Hour)),
		completedSale(t, f.partner, 60, now.Add(-time.Hour)),
	}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-01").Return(nil, shared.ErrNotFound)
	f.repo.On("Save", ctx, mock.AnythingOfType("*revenue.RevenueData")).Return(nil)

	resp, err := f.svc.Compute(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, revenue.SyncStatusPending, resp.SyncStatus)
	assert.Equal(t, 2, resp.OrderCount)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.TotalRevenue))
	assert.True(t, decimal.NewFromInt(100).Equal(resp.CategoryBreakdown["filters"]))
}

func TestSyncService_ComputeKeepsUnchangedSyncedRow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	sales := []trade.Sale{completedSale(t, f.partner, 40, now.Add(-time.Hour))}
	row, err := revenue.NewRevenueData(f.partner, "pos-1", "2026-03-01", revenue.Aggregate(sales, time.UTC), now.Add(-time.Minute))
	require.NoError(t, err)
	row.MarkSynced(now)
	f.sales.On("SoldBetween", ctx, f.partner, mock.Anything, mock.Anything).Return(sales, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-01").Return(row, nil)

	resp, err := f.svc.Compute(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, revenue.SyncStatusSynced, resp.SyncStatus)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSyncService_ComputeResetsChangedSyncedRow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	row, err := revenue.NewRevenueData(f.partner, "pos-1", "2026-03-01", revenue.Aggregate(nil, time.UTC), now.Add(-time.Hour))
	require.NoError(t, err)
	row.MarkSynced(now)
	f.sales.On("SoldBetween", ctx, f.partner, mock.Anything, mock.Anything).
		Return([]trade.Sale{completedSale(t, f.partner, 25, now)}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-01").Return(row, nil)
	f.repo.On("Save", ctx, row).Return(nil)

	resp, err := f.svc.Compute(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, revenue.SyncStatusPending, resp.SyncStatus)
	assert.Equal(t, 0, resp.Attempts)
}

func TestSyncService_ComputeRecentIncludesYesterdayAfterMidnight(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(time.Date(2026, 3, 2, 0, 20, 0, 0, time.UTC))
	f.sales.On("SoldBetween", ctx, f.partner, mock.Anything, mock.Anything).Return([]trade.Sale{}, nil)
	f.sales.On("RefundedBetween", ctx, f.partner, mock.Anything, mock.Anything).Return([]trade.Sale{}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, f.svc.ComputeRecent(ctx))
	f.repo.AssertCalled(t, "FindByKey", ctx, f.partner, "pos-1", "2026-03-02")
	f.repo.AssertCalled(t, "FindByKey", ctx, f.partner, "pos-1", "2026-03-01")
}

func TestSyncService_ComputeRecentOnlyTodayLater(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	f.sales.On("SoldBetween", ctx, f.partner, mock.Anything, mock.Anything).Return([]trade.Sale{}, nil)
	f.sales.On("RefundedBetween", ctx, f.partner, mock.Anything, mock.Anything).Return([]trade.Sale{}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-02").Return(nil, shared.ErrNotFound)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, f.svc.ComputeRecent(ctx))
	f.repo.AssertNumberOfCalls(t, "FindByKey", 1)
}

func TestSyncService_RunRecomputesDayOfRefundedSale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	yesterday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	refunded := completedSale(t, f.partner, 80, yesterday.Add(14*time.Hour))
	require.NoError(t, refunded.Refund("wrong part"))

	// Yesterday was pushed with the sale still counted
	kept := completedSale(t, f.partner, 80, yesterday.Add(14*time.Hour))
	prior, err := revenue.NewRevenueData(f.partner, "pos-1", "2026-03-01",
		revenue.Aggregate([]trade.Sale{kept}, time.UTC), yesterday.Add(20*time.Hour))
	require.NoError(t, err)
	prior.MarkSynced(yesterday.Add(21 * time.Hour))

	f.sales.On("RefundedBetween", ctx, f.partner, yesterday, now).Return([]trade.Sale{refunded}, nil).Once()
	f.sales.On("SoldBetween", ctx, f.partner, today, today.AddDate(0, 0, 1)).Return([]trade.Sale{}, nil)
	f.sales.On("SoldBetween", ctx, f.partner, yesterday, today).Return([]trade.Sale{refunded}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-02").Return(nil, shared.ErrNotFound)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-01").Return(prior, nil)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)
	f.repo.On("FindSyncable", ctx, 3, 10).Return([]revenue.RevenueData{}, nil)
	f.logs.On("Create", ctx, mock.Anything).Return(nil)

	require.NoError(t, f.svc.Run(ctx))
	assert.Equal(t, revenue.SyncStatusPending, prior.SyncStatus)
	assert.True(t, prior.TotalRevenue.IsZero())
	f.sales.AssertCalled(t, "SoldBetween", ctx, f.partner, yesterday, today)

	// The next run only looks at refunds made since this one
	later := now.Add(5 * time.Minute)
	f.svc.now = func() time.Time { return later }
	f.sales.On("RefundedBetween", ctx, f.partner, now, later).Return([]trade.Sale{}, nil).Once()
	require.NoError(t, f.svc.Run(ctx))
	f.sales.AssertExpectations(t)
}

func TestSyncService_PushMarksRows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	ok, err := revenue.NewRevenueData(f.partner, "pos-1", "2026-02-28", revenue.Figures{}, now)
	require.NoError(t, err)
	bad, err := revenue.NewRevenueData(f.partner, "pos-1", "2026-03-01", revenue.Figures{}, now)
	require.NoError(t, err)
	f.repo.On("FindSyncable", ctx, 3, 10).Return([]revenue.RevenueData{*ok, *bad}, nil)
	f.pusher.On("PushRevenue", ctx, mock.MatchedBy(func(r *revenue.RevenueData) bool { return r.Date == "2026-02-28" })).Return(nil)
	f.pusher.On("PushRevenue", ctx, mock.MatchedBy(func(r *revenue.RevenueData) bool { return r.Date == "2026-03-01" })).
		Return(errors.New("platform unavailable"))

	var saved []*revenue.RevenueData
	f.repo.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
		r := *args.Get(1).(*revenue.RevenueData)
		saved = append(saved, &r)
	}).Return(nil)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *revenue.SyncLog) bool {
		return l.Direction == revenue.SyncDirectionPush && l.Status == revenue.SyncOutcomePartial &&
			l.RecordsSucceeded == 1 && l.RecordsFailed == 1 && l.Error == "platform unavailable"
	})).Return(nil)

	res, err := f.svc.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "partial", res.Status)

	require.Len(t, saved, 2)
	assert.Equal(t, revenue.SyncStatusSynced, saved[0].SyncStatus)
	assert.Equal(t, revenue.SyncStatusFailed, saved[1].SyncStatus)
	assert.Equal(t, 1, saved[1].SyncAttempts)
	assert.Equal(t, "platform unavailable", saved[1].LastSyncError)
	assert.Equal(t, 1, f.metrics.pushes["synced"])
	assert.Equal(t, 1, f.metrics.pushes["failed"])
	f.logs.AssertExpectations(t)
}

func TestSyncService_PushNothingLogsIdleRun(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(time.Now())
	f.repo.On("FindSyncable", ctx, 3, 10).Return([]revenue.RevenueData{}, nil)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *revenue.SyncLog) bool {
		return l.Status == revenue.SyncOutcomeSuccess && l.RecordsTotal == 0 && l.Error == ""
	})).Return(nil)

	res, err := f.svc.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Attempted)
	assert.Equal(t, "success", res.Status)
	f.logs.AssertExpectations(t)
	assert.Empty(t, f.metrics.pushes)
}

func TestSyncService_RetryResetsFailedRows(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(time.Now())
	f.repo.On("ResetFailedAttempts", ctx).Return(int64(2), nil)
	f.repo.On("FindSyncable", ctx, 3, 10).Return([]revenue.RevenueData{}, nil)
	f.logs.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.svc.Retry(ctx)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestSyncService_Status(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	f := newSyncFixture(now)
	f.repo.On("CountByStatus", ctx).Return(map[revenue.SyncStatus]int64{revenue.SyncStatusFailed: 2}, nil)
	f.logs.On("FindAll", ctx, mock.MatchedBy(func(lf revenue.SyncLogFilter) bool {
		return lf.DeviceID == "pos-1" && lf.PageSize == 10
	})).Return([]revenue.SyncLog{}, int64(0), nil)
	f.repo.On("FindSyncable", ctx, 3, 10).Return([]revenue.RevenueData{}, nil)
	f.logs.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.svc.Push(ctx)
	require.NoError(t, err)
	report, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Counts[revenue.SyncStatusFailed])
	assert.Equal(t, int64(0), report.Counts[revenue.SyncStatusPending])
	require.NotNil(t, report.LastRunAt)
	assert.True(t, now.Equal(*report.LastRunAt))
}

type zoneFunc func() *time.Location

func (f zoneFunc) Location(context.Context, uuid.UUID, *time.Location) *time.Location {
	return f()
}

func TestSyncService_BusinessTimezoneBoundsDays(t *testing.T) {
	ctx := context.Background()
	// 20:00 UTC on the 1st is 03:00 on the 2nd at UTC+7
	f := newSyncFixture(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
	ict := time.FixedZone("ICT", 7*60*60)
	f.svc.SetZoneSource(zoneFunc(func() *time.Location { return ict }))

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, ict)
	f.sales.On("RefundedBetween", ctx, f.partner, mock.Anything, mock.Anything).Return([]trade.Sale{}, nil)
	f.sales.On("SoldBetween", ctx, f.partner, start, start.AddDate(0, 0, 1)).Return([]trade.Sale{}, nil)
	f.repo.On("FindByKey", ctx, f.partner, "pos-1", "2026-03-02").Return(nil, shared.ErrNotFound)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)

	assert.Equal(t, "2026-03-02", f.svc.Today(ctx))
	require.NoError(t, f.svc.ComputeRecent(ctx))
	f.sales.AssertExpectations(t)
	f.repo.AssertNumberOfCalls(t, "FindByKey", 1)
}
