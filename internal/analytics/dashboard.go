package analytics

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Dashboard agrega todas as visões da tela inicial.
type Dashboard struct {
	GeneratedAt      time.Time         `json:"generated_at"`
	LeadSummary      LeadSummary       `json:"lead_summary"`
	Funnel           []FunnelStage     `json:"funnel"`
	Sources          []SourceStat      `json:"sources"`
	TimeToConversion ConversionTime    `json:"time_to_conversion"`
	Sales            SalesAnalytics    `json:"sales"`
	Customers        CustomerAnalytics `json:"customers"`
	Tasks            TaskAnalytics     `json:"tasks"`
}

type DashboardInput struct {
	Leads     []*entity.Lead
	Sales     []*entity.Sale
	Customers []*entity.Customer
	Tasks     []*entity.Task
}

func BuildDashboard(in DashboardInput, now time.Time) Dashboard {
	return Dashboard{
		GeneratedAt:      now,
		LeadSummary:      ComputeLeadSummary(in.Leads),
		Funnel:           ComputeLeadFunnel(in.Leads),
		Sources:          ComputeSourcePerformance(in.Leads),
		TimeToConversion: ComputeTimeToConversion(in.Leads, now),
		Sales:            ComputeSalesAnalytics(in.Sales, now),
		Customers:        ComputeCustomerAnalytics(in.Customers, in.Sales, now),
		Tasks:            ComputeTaskAnalytics(in.Tasks, now),
	}
}
