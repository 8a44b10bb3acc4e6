package analytics

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	newCustomerDays      = 30
	longTermCustomerDays = 90
)

type CustomerRevenue struct {
	CustomerID string        `json:"customer_id"`
	Name       string        `json:"name"`
	Revenue    entity.Amount `json:"revenue"`
	Orders     int           `json:"orders"`
}

type CustomerAnalytics struct {
	TotalCustomers            int               `json:"total_customers"`
	ActiveCustomers           int               `json:"active_customers"`
	InactiveCustomers         int               `json:"inactive_customers"`
	CustomersWithNoOrders     int               `json:"customers_with_no_orders"`
	NewCustomers              int               `json:"new_customers"`
	RegularCustomers          int               `json:"regular_customers"`
	LongTermCustomers         int               `json:"long_term_customers"`
	AverageRevenuePerCustomer entity.Amount     `json:"average_revenue_per_customer"`
	TopCustomers              []CustomerRevenue `json:"top_customers"`
}

type revenueEntry struct {
	revenue entity.Amount
	orders  int
}

// ComputeCustomerAnalytics casa vendas concluídas com clientes pelo
// customer_id; vendas antigas sem FK casam pelo nome.
func ComputeCustomerAnalytics(customers []*entity.Customer, sales []*entity.Sale, now time.Time) CustomerAnalytics {
	res := CustomerAnalytics{}

	byID := make(map[string]*revenueEntry)
	byName := make(map[string]*revenueEntry)
	var totalRevenue entity.Amount

	for _, s := range sales {
		if s == nil || s.Status != entity.SaleStatusCompleted {
			continue
		}
		totalRevenue += s.Amount

		target := byName
		key := s.Customer
		if s.CustomerID != "" {
			target = byID
			key = s.CustomerID
		}
		e, ok := target[key]
		if !ok {
			e = &revenueEntry{}
			target[key] = e
		}
		e.revenue += s.Amount
		e.orders++
	}

	var ranked []CustomerRevenue
	for _, c := range customers {
		if c == nil {
			continue
		}
		res.TotalCustomers++

		if c.Status == entity.CustomerStatusInactive {
			res.InactiveCustomers++
		} else {
			res.ActiveCustomers++
		}

		var rev revenueEntry
		if e, ok := byID[c.ID]; ok {
			rev.revenue += e.revenue
			rev.orders += e.orders
		}
		if e, ok := byName[c.Name]; ok {
			rev.revenue += e.revenue
			rev.orders += e.orders
		}

		if rev.orders == 0 {
			res.CustomersWithNoOrders++
		} else {
			ranked = append(ranked, CustomerRevenue{
				CustomerID: c.ID,
				Name:       c.Name,
				Revenue:    rev.revenue,
				Orders:     rev.orders,
			})
		}

		if c.JoinDate.IsZero() {
			continue
		}
		days := now.Sub(c.JoinDate).Hours() / 24
		switch {
		case days <= newCustomerDays:
			res.NewCustomers++
		case days > longTermCustomerDays:
			res.LongTermCustomers++
		default:
			res.RegularCustomers++
		}
	}

	if res.TotalCustomers > 0 {
		res.AverageRevenuePerCustomer = totalRevenue / entity.Amount(res.TotalCustomers)
	}

	sortStable(ranked, func(a, b CustomerRevenue) bool { return a.Revenue > b.Revenue })
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	if ranked == nil {
		ranked = []CustomerRevenue{}
	}
	res.TopCustomers = ranked
	return res
}
