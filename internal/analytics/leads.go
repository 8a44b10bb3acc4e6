package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Etapas do funil. "lost" não entra.
var funnelStages = []entity.LeadStatus{
	entity.LeadStatusNew,
	entity.LeadStatusContacted,
	entity.LeadStatusQualified,
	entity.LeadStatusConverted,
}

type FunnelStage struct {
	Stage      entity.LeadStatus `json:"stage"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
}

// ComputeLeadFunnel conta leads por etapa. O percentual é sobre o total de
// leads (lost incluído).
func ComputeLeadFunnel(leads []*entity.Lead) []FunnelStage {
	counts := make(map[entity.LeadStatus]int, len(funnelStages))
	total := 0
	for _, l := range leads {
		if l == nil {
			continue
		}
		total++
		counts[l.Status]++
	}

	stages := make([]FunnelStage, 0, len(funnelStages))
	for _, st := range funnelStages {
		stages = append(stages, FunnelStage{
			Stage:      st,
			Count:      counts[st],
			Percentage: percent(counts[st], total),
		})
	}
	return stages
}

type SourceStat struct {
	Source         string        `json:"source"`
	Total          int           `json:"total"`
	Converted      int           `json:"converted"`
	ConversionRate float64       `json:"conversion_rate"`
	TotalValue     entity.Amount `json:"total_value"`
}

// ComputeSourcePerformance agrupa por origem (vazio vira "Unknown") e ordena
// pela taxa de conversão, maior primeiro.
func ComputeSourcePerformance(leads []*entity.Lead) []SourceStat {
	var order []string
	bySource := make(map[string]*SourceStat)

	for _, l := range leads {
		if l == nil {
			continue
		}
		src := labelOrUnknown(l.Source)
		st, ok := bySource[src]
		if !ok {
			st = &SourceStat{Source: src}
			bySource[src] = st
			order = append(order, src)
		}
		st.Total++
		if l.IsConverted() {
			st.Converted++
		}
		st.TotalValue += l.Value
	}

	out := make([]SourceStat, 0, len(order))
	for _, src := range order {
		st := bySource[src]
		st.ConversionRate = percent(st.Converted, st.Total)
		out = append(out, *st)
	}
	sortStable(out, func(a, b SourceStat) bool { return a.ConversionRate > b.ConversionRate })
	return out
}

type ConversionTime struct {
	ConvertedLeads int     `json:"converted_leads"`
	AverageHours   float64 `json:"average_hours"`
	Display        string  `json:"display"`
	// Leads sem conversion_date, medidos até last_contacted ou now.
	// O tempo deles é aproximado.
	EstimatedCount int `json:"estimated_count"`
}

// ComputeTimeToConversion calcula a média created_date → conversão dos leads
// convertidos. Leads sem created_date são ignorados.
func ComputeTimeToConversion(leads []*entity.Lead, now time.Time) ConversionTime {
	var res ConversionTime
	var totalHours float64

	for _, l := range leads {
		if l == nil || !l.IsConverted() || l.CreatedDate.IsZero() {
			continue
		}

		end := now
		switch {
		case l.ConversionDate != nil:
			end = *l.ConversionDate
		case l.LastContacted != nil:
			end = *l.LastContacted
			res.EstimatedCount++
		default:
			res.EstimatedCount++
		}

		elapsed := end.Sub(l.CreatedDate).Hours()
		if elapsed < 0 {
			elapsed = 0
		}
		totalHours += elapsed
		res.ConvertedLeads++
	}

	if res.ConvertedLeads > 0 {
		res.AverageHours = round2(totalHours / float64(res.ConvertedLeads))
	}
	res.Display = FormatDuration(res.AverageHours)
	return res
}

// FormatDuration: dias se >= 24h, horas se >= 1h, senão minutos.
func FormatDuration(hours float64) string {
	switch {
	case hours >= 24:
		return fmt.Sprintf("%.1f days", hours/24)
	case hours >= 1:
		return fmt.Sprintf("%.1f hours", hours)
	default:
		return fmt.Sprintf("%d minutes", int(math.Round(hours*60)))
	}
}

type LeadSummary struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	AverageScore   float64        `json:"average_score"`
	PipelineValue  entity.Amount  `json:"pipeline_value"`
	ConvertedValue entity.Amount  `json:"converted_value"`
	ConversionRate float64        `json:"conversion_rate"`
}

// ComputeLeadSummary: o pipeline considera só leads em aberto (nem converted
// nem lost).
func ComputeLeadSummary(leads []*entity.Lead) LeadSummary {
	res := LeadSummary{ByStatus: make(map[string]int, len(entity.LeadStatuses))}
	for _, st := range entity.LeadStatuses {
		res.ByStatus[string(st)] = 0
	}

	scoreSum := 0
	for _, l := range leads {
		if l == nil {
			continue
		}
		res.Total++
		res.ByStatus[string(l.Status)]++
		scoreSum += l.Score

		switch l.Status {
		case entity.LeadStatusConverted:
			res.ConvertedValue += l.Value
		case entity.LeadStatusLost:
		default:
			res.PipelineValue += l.Value
		}
	}

	if res.Total > 0 {
		res.AverageScore = round1(float64(scoreSum) / float64(res.Total))
	}
	res.ConversionRate = percent(res.ByStatus[string(entity.LeadStatusConverted)], res.Total)
	return res
}
