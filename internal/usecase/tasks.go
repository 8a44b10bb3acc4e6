package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

type TaskUseCase struct {
	Repo entity.TaskRepositoryInterface
	Log  logger.Logger
	Now  func() time.Time
}

func NewTaskUseCase(repo entity.TaskRepositoryInterface, log logger.Logger) *TaskUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TaskUseCase{Repo: repo, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

func (uc *TaskUseCase) List(ctx context.Context) ([]*entity.Task, error) {
	tasks, err := uc.Repo.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list tasks")
	}
	return tasks, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, id string) (*entity.Task, error) {
	t, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load task")
	}
	return t, nil
}

func (uc *TaskUseCase) Create(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	if errs := defaultValidator.Struct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	t := &entity.Task{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Priority:       input.Priority,
		Status:         input.Status,
		DueDate:        input.DueDate,
		AssignedTo:     input.AssignedTo,
		Category:       input.Category,
		EstimatedHours: input.EstimatedHours,
		ActualHours:    input.ActualHours,
	}
	if t.Priority == "" {
		t.Priority = entity.TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = entity.TaskStatusTodo
	}

	created, err := uc.Repo.Insert(ctx, t)
	if err != nil {
		return nil, storeError(err, "failed to create task")
	}
	return created, nil
}

func (uc *TaskUseCase) Update(ctx context.Context, id string, patch entity.TaskPatch) (*entity.Task, error) {
	if errs := ValidateTaskPatch(patch); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	t, err := uc.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update task")
	}
	return t, nil
}

func (uc *TaskUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete task")
	}
	return nil
}

// SweepOverdue marca como overdue as tarefas vencidas.
func (uc *TaskUseCase) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := uc.Repo.MarkOverdue(ctx, uc.Now())
	if err != nil {
		return 0, storeError(err, "failed to mark overdue tasks")
	}
	if n > 0 {
		uc.Log.Info("tasks marked overdue", "count", n)
	}
	return n, nil
}
