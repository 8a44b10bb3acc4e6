package analytics

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Meses da série de receita, incluindo o atual.
const trendMonths = 6

type MonthlyRevenue struct {
	Month   string        `json:"month"` // YYYY-MM
	Revenue entity.Amount `json:"revenue"`
	Orders  int           `json:"orders"`
}

type SalesAnalytics struct {
	TotalRevenue         entity.Amount    `json:"total_revenue"`
	PendingValue         entity.Amount    `json:"pending_value"`
	TotalOrders          int              `json:"total_orders"`
	CompletedOrders      int              `json:"completed_orders"`
	PendingOrders        int              `json:"pending_orders"`
	CancelledOrders      int              `json:"cancelled_orders"`
	AverageOrderValue    entity.Amount    `json:"average_order_value"`
	ConversionRate       float64          `json:"conversion_rate"`
	ThisMonthRevenue     entity.Amount    `json:"this_month_revenue"`
	LastMonthRevenue     entity.Amount    `json:"last_month_revenue"`
	MonthOverMonthGrowth float64          `json:"month_over_month_growth"`
	MonthlyRevenue       []MonthlyRevenue `json:"monthly_revenue"`
	TopProducts          []RankedItem     `json:"top_products"`
	TopCustomers         []RankedItem     `json:"top_customers"`
}

// ComputeSalesAnalytics: receita considera apenas vendas Completed.
func ComputeSalesAnalytics(sales []*entity.Sale, now time.Time) SalesAnalytics {
	res := SalesAnalytics{}

	thisMonth := startOfMonth(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	trend := make([]MonthlyRevenue, trendMonths)
	trendIndex := make(map[string]int, trendMonths)
	for i := 0; i < trendMonths; i++ {
		m := thisMonth.AddDate(0, i-(trendMonths-1), 0)
		trend[i] = MonthlyRevenue{Month: monthKey(m)}
		trendIndex[monthKey(m)] = i
	}

	products := newRanker()
	customers := newRanker()

	for _, s := range sales {
		if s == nil {
			continue
		}
		res.TotalOrders++

		switch s.Status {
		case entity.SaleStatusPending:
			res.PendingOrders++
			res.PendingValue += s.Amount
			continue
		case entity.SaleStatusCancelled:
			res.CancelledOrders++
			continue
		case entity.SaleStatusCompleted:
		default:
			continue
		}

		res.CompletedOrders++
		res.TotalRevenue += s.Amount

		products.add(labelOrUnknown(s.Product), labelOrUnknown(s.Product), s.Amount)
		customers.add(s.CustomerKey(), labelOrUnknown(s.Customer), s.Amount)

		date, ok := saleDate(s)
		if !ok {
			continue
		}
		key := monthKey(date)
		if idx, ok := trendIndex[key]; ok {
			trend[idx].Revenue += s.Amount
			trend[idx].Orders++
		}
		switch key {
		case monthKey(thisMonth):
			res.ThisMonthRevenue += s.Amount
		case monthKey(lastMonth):
			res.LastMonthRevenue += s.Amount
		}
	}

	if res.CompletedOrders > 0 {
		res.AverageOrderValue = res.TotalRevenue / entity.Amount(res.CompletedOrders)
	}
	res.ConversionRate = percent(res.CompletedOrders, res.TotalOrders)
	res.MonthOverMonthGrowth = Growth(res.ThisMonthRevenue, res.LastMonthRevenue)
	res.MonthlyRevenue = trend
	res.TopProducts = products.top(TopN)
	res.TopCustomers = customers.top(TopN)
	return res
}

// Growth = (atual-anterior)/anterior*100 com 1 casa. Anterior zero dá 0.
func Growth(current, previous entity.Amount) float64 {
	if previous == 0 {
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}
