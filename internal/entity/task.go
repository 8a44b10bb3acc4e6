package entity

import (
	"context"
	"time"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	}
	return false
}

type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	AssignedTo     string       `json:"assigned_to,omitempty"`
	Category       string       `json:"category,omitempty"`
	EstimatedHours float64      `json:"estimated_hours"`
	ActualHours    float64      `json:"actual_hours"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsOverdue: vencida e não concluída.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	if t.Status == TaskStatusOverdue {
		return true
	}
	return t.DueDate != nil && t.DueDate.Before(now)
}

type TaskPatch struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Priority       *TaskPriority `json:"priority,omitempty"`
	Status         *TaskStatus   `json:"status,omitempty"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	AssignedTo     *string       `json:"assigned_to,omitempty"`
	Category       *string       `json:"category,omitempty"`
	EstimatedHours *float64      `json:"estimated_hours,omitempty"`
	ActualHours    *float64      `json:"actual_hours,omitempty"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
}

type TaskRepositoryInterface interface {
	FetchAll(ctx context.Context) ([]*Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	Insert(ctx context.Context, t *Task) (*Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	// MarkOverdue move para "overdue" as tarefas vencidas; retorna quantas mudaram.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
