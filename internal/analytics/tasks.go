package analytics

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TaskAnalytics struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	ByPriority       map[string]int `json:"by_priority"`
	Completed        int            `json:"completed"`
	Overdue          int            `json:"overdue"`
	HighPriorityOpen int            `json:"high_priority_open"`
	CompletionRate   float64        `json:"completion_rate"`
	EstimatedHours   float64        `json:"estimated_hours"`
	ActualHours      float64        `json:"actual_hours"`
	// estimado/real*100 nas tarefas concluídas
	Efficiency float64 `json:"efficiency"`
}

func ComputeTaskAnalytics(tasks []*entity.Task, now time.Time) TaskAnalytics {
	res := TaskAnalytics{
		ByStatus: map[string]int{
			string(entity.TaskStatusTodo):       0,
			string(entity.TaskStatusInProgress): 0,
			string(entity.TaskStatusCompleted):  0,
			string(entity.TaskStatusOverdue):    0,
		},
		ByPriority: map[string]int{
			string(entity.TaskPriorityLow):    0,
			string(entity.TaskPriorityMedium): 0,
			string(entity.TaskPriorityHigh):   0,
		},
	}

	var doneEstimated, doneActual float64
	for _, t := range tasks {
		if t == nil {
			continue
		}
		res.Total++
		res.ByStatus[string(t.Status)]++
		res.ByPriority[string(t.Priority)]++
		res.EstimatedHours += nonNegative(t.EstimatedHours)
		res.ActualHours += nonNegative(t.ActualHours)

		if t.Status == entity.TaskStatusCompleted {
			res.Completed++
			doneEstimated += nonNegative(t.EstimatedHours)
			doneActual += nonNegative(t.ActualHours)
			continue
		}
		if t.IsOverdue(now) {
			res.Overdue++
		}
		if t.Priority == entity.TaskPriorityHigh {
			res.HighPriorityOpen++
		}
	}

	res.CompletionRate = percent(res.Completed, res.Total)
	res.EstimatedHours = round1(res.EstimatedHours)
	res.ActualHours = round1(res.ActualHours)
	if doneActual > 0 {
		res.Efficiency = round1(doneEstimated / doneActual * 100)
	}
	return res
}

func nonNegative(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}
