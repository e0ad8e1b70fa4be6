// Package export renders reports as spreadsheet files.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	dailySheet    = "Daily"
	paymentSheet  = "Payments"
	categorySheet = "Categories"
)

var dailyHeader = []any{
	"Date", "Device", "Orders", "Items sold", "Revenue", "Tax", "Discount",
	"Refunds", "Refund amount", "Avg order", "Sync status",
}

// RevenueWorkbook builds a workbook with one row per rollup plus payment and
// category totals over all rows.
func RevenueWorkbook(rows []revenue.RevenueData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, dailySheet, 1, dailyHeader); err != nil {
		return nil, err
	}
	payments := make(map[string]decimal.Decimal)
	categories := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for i, r := range rows {
		row := []any{
			r.Date, r.DeviceID, r.OrderCount, r.ItemsSold,
			money(r.TotalRevenue), money(r.TotalTax), money(r.TotalDiscount),
			r.RefundCount, money(r.RefundAmount), money(r.AverageOrderValue),
			string(r.SyncStatus),
		}
		if err := writeRow(f, dailySheet, i+2, row); err != nil {
			return nil, err
		}
		total = total.Add(r.TotalRevenue)
		for k, v := range r.PaymentBreakdown {
			payments[k] = payments[k].Add(v)
		}
		for k, v := range r.CategoryBreakdown {
			categories[k] = categories[k].Add(v)
		}
	}
	if len(rows) > 0 {
		if err := writeRow(f, dailySheet, len(rows)+2, []any{"Total", "", "", "", money(total)}); err != nil {
			return nil, err
		}
	}
	if err := f.SetRowStyle(dailySheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(dailySheet, "A", "K", 14); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for _, sheet := range []struct {
		name   string
		label  string
		totals map[string]decimal.Decimal
	}{
		{paymentSheet, "Payment method", payments},
		{categorySheet, "Category", categories},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		if err := writeBreakdown(f, sheet.name, sheet.label, sheet.totals); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBreakdown(f *excelize.File, sheet, label string, totals map[string]decimal.Decimal) error {
	if err := writeRow(f, sheet, 1, []any{label, "Amount"}); err != nil {
		return err
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if err := writeRow(f, sheet, i+2, []any{k, money(totals[k])}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
