package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planweave/planweave/internal/domain"
)

type ReflectionLogRepo struct {
	db querier
}

func NewReflectionLogRepo(db querier) *ReflectionLogRepo {
	return &ReflectionLogRepo{db: db}
}

func (r *ReflectionLogRepo) Create(ctx context.Context, l *domain.ReflectionLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reflection_logs (id, user_id, goal_id, analysis, recommendations, degraded, is_applied, applied_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.UserID, l.GoalID, l.Analysis, l.Recommendations,
		l.Degraded, l.IsApplied, l.AppliedAt, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("reflectionLogRepo.Create: %w", err)
	}

	return nil
}

func (r *ReflectionLogRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ReflectionLog, error) {
	var l domain.ReflectionLog

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, goal_id, analysis, recommendations, degraded, is_applied, applied_at, created_at
		 FROM reflection_logs WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(
		&l.ID, &l.UserID, &l.GoalID, &l.Analysis, &l.Recommendations,
		&l.Degraded, &l.IsApplied, &l.AppliedAt, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reflectionLogRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reflectionLogRepo.GetByID: %w", err)
	}

	return &l, nil
}

func (r *ReflectionLogRepo) List(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, limit int) ([]*domain.ReflectionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := `SELECT id, user_id, goal_id, analysis, recommendations, degraded, is_applied, applied_at, created_at
	          FROM reflection_logs WHERE user_id = $1`
	args := []any{userID}

	if goalID != nil {
		args = append(args, *goalID)
		query += fmt.Sprintf(" AND goal_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reflectionLogRepo.List: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ReflectionLog
	for rows.Next() {
		var l domain.ReflectionLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.GoalID, &l.Analysis, &l.Recommendations,
			&l.Degraded, &l.IsApplied, &l.AppliedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reflectionLogRepo.List: scan: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reflectionLogRepo.List: rows: %w", err)
	}

	return logs, nil
}

// MarkApplied claims the log for application. The is_applied guard in the
// WHERE clause makes the claim exclusive: of two concurrent callers, exactly
// one flips the flag and the other gets ErrConflict.
func (r *ReflectionLogRepo) MarkApplied(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reflection_logs SET is_applied = TRUE, applied_at = $1
		 WHERE id = $2 AND is_applied = FALSE`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("reflectionLogRepo.MarkApplied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM reflection_logs WHERE id = $1)`,
			id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("reflectionLogRepo.MarkApplied: %w", err)
		}
		if exists {
			return fmt.Errorf("reflectionLogRepo.MarkApplied: %w", domain.ErrConflict)
		}
		return fmt.Errorf("reflectionLogRepo.MarkApplied: %w", domain.ErrNotFound)
	}

	return nil
}
