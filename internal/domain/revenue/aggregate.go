package revenue

import (
	"time"

	"github.com/autocare/platform/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel groups lines without a category
const UncategorizedLabel = "uncategorized"

// Aggregate rolls up the sales of one business day.
//
// Completed sales count toward revenue, tax, discount, items and the
// breakdowns. Refunded sales only count toward refund count and amount.
// Pending sales are ignored. Hourly buckets use the sale time in loc.
func Aggregate(sales []trade.Sale, loc *time.Location) Figures {
	if loc == nil {
		loc = time.Local
	}
	f := Figures{
		TotalRevenue:      decimal.Zero,
		TotalTax:          decimal.Zero,
		TotalDiscount:     decimal.Zero,
		RefundAmount:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		PaymentBreakdown:  make(map[string]decimal.Decimal),
		CategoryBreakdown: make(map[string]decimal.Decimal),
		HourlyBreakdown:   make([]decimal.Decimal, 24),
	}
	for i := range f.HourlyBreakdown {
		f.HourlyBreakdown[i] = decimal.Zero
	}

	for _, s := range sales {
		switch s.Status {
		case trade.SaleStatusCompleted:
			f.OrderCount++
			f.TotalRevenue = f.TotalRevenue.Add(s.Total)
			f.TotalTax = f.TotalTax.Add(s.Tax)
			f.TotalDiscount = f.TotalDiscount.Add(s.Discount)
			f.ItemsSold += s.ItemsSold()

			method := string(s.PaymentMethod)
			f.PaymentBreakdown[method] = f.PaymentBreakdown[method].Add(s.Total)

			hour := s.SoldAt.In(loc).Hour()
			f.HourlyBreakdown[hour] = f.HourlyBreakdown[hour].Add(s.Total)

			for _, item := range s.Items {
				category := item.Category
				if category == "" {
					category = UncategorizedLabel
				}
				f.CategoryBreakdown[category] = f.CategoryBreakdown[category].Add(item.Subtotal)
			}
		case trade.SaleStatusRefunded:
			f.RefundCount++
			f.RefundAmount = f.RefundAmount.Add(s.Total)
		}
	}

	if f.OrderCount > 0 {
		f.AverageOrderValue = f.TotalRevenue.Div(decimal.NewFromInt(int64(f.OrderCount))).Round(2)
	}
	return f
}
