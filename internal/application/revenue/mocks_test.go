package revenue

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRevenueRepository is a mock implementation of revenue.Repository
type MockRevenueRepository struct {
	mock.Mock
}

func (m *MockRevenueRepository) FindByKey(ctx context.Context, partnerID uuid.UUID, deviceID, date string) (*revenue.RevenueData, error) {
	args := m.Called(ctx, partnerID, deviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revenue.RevenueData), args.Error(1)
}

func (m *MockRevenueRepository) FindAll(ctx context.Context, filter revenue.Filter) ([]revenue.RevenueData, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]revenue.RevenueData), args.Get(1).(int64), args.Error(2)
}

func (m *MockRevenueRepository) FindSyncable(ctx context.Context, maxAttempts, limit int) ([]revenue.RevenueData, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]revenue.RevenueData), args.Error(1)
}

func (m *MockRevenueRepository) CountByStatus(ctx context.Context) (map[revenue.SyncStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[revenue.SyncStatus]int64), args.Error(1)
}

func (m *MockRevenueRepository) ResetFailedAttempts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRevenueRepository) Save(ctx context.Context, data *revenue.RevenueData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// MockSyncLogRepository is a mock implementation of revenue.SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Create(ctx context.Context, log *revenue.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindAll(ctx context.Context, filter revenue.SyncLogFilter) ([]revenue.SyncLog, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]revenue.SyncLog), args.Get(1).(int64), args.Error(2)
}

type MockSalesSource struct {
	mock.Mock
}

func (m *MockSalesSource) SoldBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, partnerID, from, to)
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSalesSource) RefundedBetween(ctx context.Context, partnerID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, partnerID, from, to)
	return args.Get(0).([]trade.Sale), args.Error(1)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) PushRevenue(ctx context.Context, data *revenue.RevenueData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

type recordingMetrics struct {
	ingests map[string]int
	pushes  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{ingests: map[string]int{}, pushes: map[string]int{}}
}

func (r *recordingMetrics) RecordRevenueIngest(_ context.Context, outcome string) {
	r.ingests[outcome]++
}

func (r *recordingMetrics) RecordRevenuePush(_ context.Context, status string, n int) {
	r.pushes[status] += n
}

type memoryArchive struct {
	keys []string
	err  error
}

func (a *memoryArchive) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "mem://" + key, nil
}
