package revenue

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T, method trade.PaymentMethod, soldAt time.Time, lines ...trade.SaleLine) *trade.Sale {
	t.Helper()
	s, err := trade.NewSale(trade.NewSaleInput{
		PartnerID:     uuid.New(),
		Number:        trade.GenerateSaleNumber(soldAt),
		PaymentMethod: method,
		SoldAt:        soldAt,
		Lines:         lines,
	})
	require.NoError(t, err)
	return s
}

func partLine(category string, qty int, price string) trade.SaleLine {
	id := uuid.New()
	return trade.SaleLine{
		Kind:      trade.ItemKindPart,
		ProductID: &id,
		Name:      "Brake pad",
		Category:  category,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestAggregate(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)

	completedCash := newTestSale(t, trade.PaymentCash, day.Add(9*time.Hour+15*time.Minute),
		partLine("brakes", 2, "25.00"), partLine("", 1, "10.00"))
	completedCard := newTestSale(t, trade.PaymentCard, day.Add(14*time.Hour),
		partLine("filters", 3, "5.00"))
	refunded := newTestSale(t, trade.PaymentCard, day.Add(10*time.Hour), partLine("brakes", 1, "40.00"))
	require.NoError(t, refunded.Refund("wrong part"))
	pending, err := trade.NewSale(trade.NewSaleInput{
		PartnerID:     uuid.New(),
		Number:        "S-PENDING",
		PaymentMethod: trade.PaymentCash,
		SoldAt:        day.Add(11 * time.Hour),
		Lines:         []trade.SaleLine{partLine("brakes", 1, "99.00")},
		Status:        trade.SaleStatusPending,
	})
	require.NoError(t, err)

	f := Aggregate([]trade.Sale{*completedCash, *completedCard, *refunded, *pending}, loc)

	assert.Equal(t, 2, f.OrderCount)
	assert.True(t, f.TotalRevenue.Equal(decimal.RequireFromString("75")), f.TotalRevenue.String())
	assert.Equal(t, 6, f.ItemsSold)
	assert.Equal(t, 1, f.RefundCount)
	assert.True(t, f.RefundAmount.Equal(decimal.RequireFromString("40")))
	assert.True(t, f.AverageOrderValue.Equal(decimal.RequireFromString("37.5")))

	assert.True(t, f.PaymentBreakdown["cash"].Equal(decimal.RequireFromString("60")))
	assert.True(t, f.PaymentBreakdown["card"].Equal(decimal.RequireFromString("15")))

	assert.True(t, f.CategoryBreakdown["brakes"].Equal(decimal.RequireFromString("50")))
	assert.True(t, f.CategoryBreakdown["filters"].Equal(decimal.RequireFromString("15")))
	assert.True(t, f.CategoryBreakdown[UncategorizedLabel].Equal(decimal.RequireFromString("10")))

	require.Len(t, f.HourlyBreakdown, 24)
	assert.True(t, f.HourlyBreakdown[9].Equal(decimal.RequireFromString("60")))
	assert.True(t, f.HourlyBreakdown[14].Equal(decimal.RequireFromString("15")))
	assert.True(t, f.HourlyBreakdown[10].IsZero())
	assert.True(t, f.HourlyBreakdown[11].IsZero())
}

func TestAggregate_Empty(t *testing.T) {
	f := Aggregate(nil, time.UTC)
	assert.Equal(t, 0, f.OrderCount)
	assert.True(t, f.TotalRevenue.IsZero())
	assert.True(t, f.AverageOrderValue.IsZero())
	assert.Len(t, f.HourlyBreakdown, 24)
	assert.Empty(t, f.PaymentBreakdown)
}

func TestAggregate_HourUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	s := newTestSale(t, trade.PaymentCash, time.Date(2026, 3, 14, 2, 30, 0, 0, time.UTC), partLine("x", 1, "1"))

	f := Aggregate([]trade.Sale{*s}, loc)
	assert.True(t, f.HourlyBreakdown[9].Equal(decimal.NewFromInt(1)))
}

func TestNewRevenueData(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := NewRevenueData(uuid.New(), "pos-01", "2026-03-14", Aggregate(nil, time.UTC), time.Now())
		require.NoError(t, err)
		assert.Equal(t, SyncStatusPending, r.SyncStatus)
		assert.Zero(t, r.SyncAttempts)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := NewRevenueData(uuid.New(), "pos-01", "14/03/2026", Figures{}, time.Now())
		assert.Error(t, err)
	})

	t.Run("empty device", func(t *testing.T) {
		_, err := NewRevenueData(uuid.New(), "", "2026-03-14", Figures{}, time.Now())
		assert.Error(t, err)
	})
}

func TestRevenueData_SyncLifecycle(t *testing.T) {
	r, err := NewRevenueData(uuid.New(), "pos-01", "2026-03-14", Aggregate(nil, time.UTC), time.Now())
	require.NoError(t, err)

	assert.True(t, r.NeedsSync(3))

	r.MarkFailed("connection refused")
	assert.Equal(t, SyncStatusFailed, r.SyncStatus)
	assert.Equal(t, 1, r.SyncAttempts)
	assert.Equal(t, "connection refused", r.LastSyncError)
	assert.True(t, r.NeedsSync(3))

	r.MarkFailed("timeout")
	r.MarkFailed("timeout")
	assert.False(t, r.NeedsSync(3))

	r.ResetAttempts()
	assert.True(t, r.NeedsSync(3))

	now := time.Now()
	r.MarkSynced(now)
	assert.Equal(t, SyncStatusSynced, r.SyncStatus)
	assert.Empty(t, r.LastSyncError)
	require.NotNil(t, r.SyncedAt)
	assert.False(t, r.NeedsSync(3))
}

func TestRevenueData_ApplyFigures(t *testing.T) {
	r, err := NewRevenueData(uuid.New(), "pos-01", "2026-03-14", Aggregate(nil, time.UTC), time.Now())
	require.NoError(t, err)
	r.MarkSynced(time.Now())

	assert.False(t, r.ApplyFigures(Aggregate(nil, time.UTC), time.Now()))
	assert.Equal(t, SyncStatusSynced, r.SyncStatus)

	changed := Aggregate(nil, time.UTC)
	changed.OrderCount = 1
	changed.TotalRevenue = decimal.NewFromInt(10)
	assert.True(t, r.ApplyFigures(changed, time.Now()))
	assert.Equal(t, SyncStatusPending, r.SyncStatus)
	assert.Zero(t, r.SyncAttempts)
}

func TestRevenueData_IsStaleAgainst(t *testing.T) {
	now := time.Now()
	stored := &RevenueData{ComputedAt: now}
	older := &RevenueData{ComputedAt: now.Add(-time.Minute)}
	newer := &RevenueData{ComputedAt: now.Add(time.Minute)}

	assert.True(t, older.IsStaleAgainst(stored))
	assert.False(t, newer.IsStaleAgainst(stored))
	assert.False(t, older.IsStaleAgainst(nil))
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	from, to, err := DayBounds("2026-03-14", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), from)
	assert.Equal(t, 24*time.Hour, to.Sub(from))

	_, _, err = DayBounds("2026-13-01", loc)
	assert.Error(t, err)
}

func TestSyncLog(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		l := StartSyncLog(uuid.New(), "pos-01", SyncDirectionPush, "revenue")
		l.Succeeded()
		l.Succeeded()
		l.Finish()
		assert.Equal(t, SyncOutcomeSuccess, l.Status)
		assert.Equal(t, 2, l.RecordsTotal)
	})

	t.Run("partial keeps first error", func(t *testing.T) {
		l := StartSyncLog(uuid.New(), "pos-01", SyncDirectionPush, "revenue")
		l.Succeeded()
		l.Failed(errors.New("first"))
		l.Failed(errors.New("second"))
		l.Finish()
		assert.Equal(t, SyncOutcomePartial, l.Status)
		assert.Equal(t, "first", l.Error)
		assert.Equal(t, 3, l.RecordsTotal)
	})

	t.Run("failed", func(t *testing.T) {
		l := StartSyncLog(uuid.New(), "pos-01", SyncDirectionPush, "revenue")
		l.Failed(errors.New("down"))
		l.Finish()
		assert.Equal(t, SyncOutcomeFailed, l.Status)
	})

	t.Run("empty run is a success", func(t *testing.T) {
		l := StartSyncLog(uuid.New(), "pos-01", SyncDirectionPush, "revenue")
		l.Finish()
		assert.Equal(t, SyncOutcomeSuccess, l.Status)
	})
}

func TestRevenueData_MarkFailedTruncatesOnRuneBoundary(t *testing.T) {
	r, err := NewRevenueData(uuid.New(), "pos-01", "2026-03-14", Aggregate(nil, time.UTC), time.Now())
	require.NoError(t, err)

	r.MarkFailed(strings.Repeat("é", 1200))
	assert.True(t, utf8.ValidString(r.LastSyncError))
	assert.Equal(t, 1000, utf8.RuneCountInString(r.LastSyncError))

	r.MarkFailed("dial tcp: connection refused")
	assert.Equal(t, "dial tcp: connection refused", r.LastSyncError)
}
