package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

const taskColumns = `id, title, description, priority, status, due_date, assigned_to, category,
	estimated_hours, actual_hours, created_at, updated_at`

type TaskRepository struct {
	DB      *sql.DB
	Dialect string
	Now     func() time.Time
}

func NewTaskRepository(db *sql.DB, dialect string) *TaskRepository {
	return &TaskRepository{DB: db, Dialect: dialect, Now: clock}
}

func (r *TaskRepository) FetchAll(ctx context.Context) ([]*entity.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *TaskRepository) Insert(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	t := *task
	now := r.Now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = entity.TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = entity.TaskStatusTodo
	}
	t.CreatedAt, t.UpdatedAt = now, now

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, string(t.Priority), string(t.Status),
		nullTime(t.DueDate), t.AssignedTo, t.Category,
		t.EstimatedHours, t.ActualHours, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return r.FindByID(ctx, t.ID)
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch entity.TaskPatch) (*entity.Task, error) {
	var out *entity.Task
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
		if r.Dialect == DialectPostgres {
			query += ` FOR UPDATE`
		}
		t, err := scanTask(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		patch.Apply(t)
		t.UpdatedAt = r.Now()

		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET
				title = $1, description = $2, priority = $3, status = $4, due_date = $5,
				assigned_to = $6, category = $7, estimated_hours = $8, actual_hours = $9,
				updated_at = $10
			WHERE id = $11
		`,
			t.Title, t.Description, string(t.Priority), string(t.Status), nullTime(t.DueDate),
			t.AssignedTo, t.Category, t.EstimatedHours, t.ActualHours,
			t.UpdatedAt,
			t.ID,
		)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return false, err
	}
	return true, nil
}

// MarkOverdue move tarefas vencidas e abertas para "overdue".
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET status = $1, updated_at = $2
		WHERE status NOT IN ($3, $4) AND due_date IS NOT NULL AND due_date < $5
	`,
		string(entity.TaskStatusOverdue), r.Now(),
		string(entity.TaskStatusCompleted), string(entity.TaskStatusOverdue),
		utc(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue tasks: %w", err)
	}
	return res.RowsAffected()
}

func scanTask(row scanner) (*entity.Task, error) {
	var (
		t                entity.Task
		priority, status string
		due              sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &priority, &status, &due,
		&t.AssignedTo, &t.Category, &t.EstimatedHours, &t.ActualHours,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	t.Priority = entity.TaskPriority(priority)
	t.Status = entity.TaskStatus(status)
	t.DueDate = timePtr(due)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
