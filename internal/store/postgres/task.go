package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planweave/planweave/internal/domain"
)

type TaskRepo struct {
	db querier
}

func NewTaskRepo(db querier) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, user_id, goal_id, title, description, due_date, due_time,
       status, priority, dependencies, version, created_at, updated_at`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, user_id, goal_id, title, description, due_date, due_time, status, priority, dependencies, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.UserID, t.GoalID, t.Title, t.Description, t.DueDate, t.DueTime,
		t.Status, t.Priority, t.Dependencies, t.Version,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(
		&t.ID, &t.UserID, &t.GoalID, &t.Title, &t.Description, &t.DueDate, &t.DueTime,
		&t.Status, &t.Priority, &t.Dependencies, &t.Version,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TaskRepo) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if filter.GoalID != nil {
		args = append(args, *filter.GoalID)
		query += fmt.Sprintf(" AND goal_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.DueFrom.IsZero() {
		args = append(args, filter.DueFrom)
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if !filter.DueTo.IsZero() {
		args = append(args, filter.DueTo)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY due_date, created_at LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.List")
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET goal_id = $1, title = $2, description = $3, due_date = $4, due_time = $5,
		        status = $6, priority = $7, dependencies = $8, version = version + 1, updated_at = now()
		 WHERE user_id = $9 AND id = $10`,
		t.GoalID, t.Title, t.Description, t.DueDate, t.DueTime,
		t.Status, t.Priority, t.Dependencies,
		t.UserID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// ConditionalUpdate writes t only while the stored version still matches
// expectedVersion. A version mismatch on an existing row is reported as
// ErrConflict so callers can skip the stale change instead of overwriting a
// concurrent edit.
func (r *TaskRepo) ConditionalUpdate(ctx context.Context, t *domain.Task, expectedVersion int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET goal_id = $1, title = $2, description = $3, due_date = $4, due_time = $5,
		        status = $6, priority = $7, dependencies = $8, version = version + 1, updated_at = now()
		 WHERE user_id = $9 AND id = $10 AND version = $11`,
		t.GoalID, t.Title, t.Description, t.DueDate, t.DueTime,
		t.Status, t.Priority, t.Dependencies,
		t.UserID, t.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.ConditionalUpdate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE user_id = $1 AND id = $2)`,
			t.UserID, t.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("taskRepo.ConditionalUpdate: %w", err)
		}
		if exists {
			return fmt.Errorf("taskRepo.ConditionalUpdate: %w", domain.ErrConflict)
		}
		return fmt.Errorf("taskRepo.ConditionalUpdate: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = $1, version = version + 1, updated_at = now() WHERE user_id = $2 AND id = $3`,
		status, userID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.GoalID, &t.Title, &t.Description, &t.DueDate, &t.DueTime,
			&t.Status, &t.Priority, &t.Dependencies, &t.Version,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
