package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rollup(t *testing.T, date, device, total string, payments map[string]string) revenue.RevenueData {
	t.Helper()
	f := revenue.Figures{
		TotalRevenue:      decimal.RequireFromString(total),
		OrderCount:        2,
		PaymentBreakdown:  map[string]decimal.Decimal{},
		CategoryBreakdown: map[string]decimal.Decimal{"brakes": decimal.RequireFromString(total)},
	}
	for k, v := range payments {
		f.PaymentBreakdown[k] = decimal.RequireFromString(v)
	}
	r, err := revenue.NewRevenueData(uuid.New(), device, date, f, time.Now())
	require.NoError(t, err)
	return *r
}

func TestRevenueWorkbook(t *testing.T) {
	rows := []revenue.RevenueData{
		rollup(t, "2026-03-01", "pos-1", "120.50", map[string]string{"cash": "100.50", "card": "20"}),
		rollup(t, "2026-03-02", "pos-1", "80", map[string]string{"cash": "80"}),
	}

	data, err := RevenueWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Daily", "Payments", "Categories"}, f.GetSheetList())

	daily, err := f.GetRows("Daily")
	require.NoError(t, err)
	require.Len(t, daily, 4)
	assert.Equal(t, "Date", daily[0][0])
	assert.Equal(t, "2026-03-01", daily[1][0])
	assert.Equal(t, "120.5", daily[1][4])
	assert.Equal(t, "pending", daily[2][10])
	assert.Equal(t, "Total", daily[3][0])
	assert.Equal(t, "200.5", daily[3][4])

	payments, err := f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, []string{"card", "20"}, payments[1])
	assert.Equal(t, []string{"cash", "180.5"}, payments[2])

	categories, err := f.GetRows("Categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"brakes", "200.5"}, categories[1])
}

func TestRevenueWorkbook_Empty(t *testing.T) {
	data, err := RevenueWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	daily, err := f.GetRows("Daily")
	require.NoError(t, err)
	assert.Len(t, daily, 1)
}
