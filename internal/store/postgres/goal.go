package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planweave/planweave/internal/domain"
)

type GoalRepo struct {
	db querier
}

func NewGoalRepo(db querier) *GoalRepo {
	return &GoalRepo{db: db}
}

func (r *GoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO goals (id, user_id, title, description, start_date, end_date, outline, progress, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.UserID, g.Title, g.Description, g.StartDate, g.EndDate,
		g.Outline, g.Progress, g.Status, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("goalRepo.Create: %w", err)
	}

	return nil
}

func (r *GoalRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	var g domain.Goal

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, description, start_date, end_date, outline, progress, status, created_at
		 FROM goals WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.StartDate, &g.EndDate,
		&g.Outline, &g.Progress, &g.Status, &g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("goalRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("goalRepo.GetByID: %w", err)
	}

	return &g, nil
}

func (r *GoalRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Goal, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, description, start_date, end_date, outline, progress, status, created_at
		 FROM goals WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("goalRepo.List: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Description, &g.StartDate, &g.EndDate,
			&g.Outline, &g.Progress, &g.Status, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("goalRepo.List: scan: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goalRepo.List: rows: %w", err)
	}

	return goals, nil
}

func (r *GoalRepo) Update(ctx context.Context, g *domain.Goal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE goals SET title = $1, description = $2, start_date = $3, end_date = $4,
		        outline = $5, progress = $6, status = $7
		 WHERE user_id = $8 AND id = $9`,
		g.Title, g.Description, g.StartDate, g.EndDate,
		g.Outline, g.Progress, g.Status,
		g.UserID, g.ID,
	)
	if err != nil {
		return fmt.Errorf("goalRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goalRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *GoalRepo) UpdateProgress(ctx context.Context, userID, id uuid.UUID, progress float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE goals SET progress = $1 WHERE user_id = $2 AND id = $3`,
		progress, userID, id,
	)
	if err != nil {
		return fmt.Errorf("goalRepo.UpdateProgress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goalRepo.UpdateProgress: %w", domain.ErrNotFound)
	}

	return nil
}
