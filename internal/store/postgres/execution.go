package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/domain"
)

type ExecutionLogRepo struct {
	db querier
}

func NewExecutionLogRepo(db querier) *ExecutionLogRepo {
	return &ExecutionLogRepo{db: db}
}

// Upsert keeps one row per (user, log_date); a second write for the same day
// replaces the earlier numbers and text.
func (r *ExecutionLogRepo) Upsert(ctx context.Context, l *domain.ExecutionLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO execution_logs (id, user_id, goal_id, log_date, tasks_completed, tasks_total, difficulties, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, log_date) DO UPDATE SET
		     goal_id = EXCLUDED.goal_id,
		     tasks_completed = EXCLUDED.tasks_completed,
		     tasks_total = EXCLUDED.tasks_total,
		     difficulties = EXCLUDED.difficulties,
		     feedback = EXCLUDED.feedback`,
		l.ID, l.UserID, l.GoalID, l.LogDate, l.TasksCompleted, l.TasksTotal,
		l.Difficulties, l.Feedback, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("executionLogRepo.Upsert: %w", err)
	}

	return nil
}

func (r *ExecutionLogRepo) ListWindow(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, start, end time.Time) ([]*domain.ExecutionLog, error) {
	query := `SELECT id, user_id, goal_id, log_date, tasks_completed, tasks_total, difficulties, feedback, created_at
	          FROM execution_logs
	          WHERE user_id = $1 AND log_date >= $2 AND log_date <= $3`
	args := []any{userID, start, end}

	if goalID != nil {
		args = append(args, *goalID)
		query += fmt.Sprintf(" AND goal_id = $%d", len(args))
	}
	query += " ORDER BY log_date"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executionLogRepo.ListWindow: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ExecutionLog
	for rows.Next() {
		var l domain.ExecutionLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.GoalID, &l.LogDate, &l.TasksCompleted, &l.TasksTotal,
			&l.Difficulties, &l.Feedback, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("executionLogRepo.ListWindow: scan: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("executionLogRepo.ListWindow: rows: %w", err)
	}

	return logs, nil
}
