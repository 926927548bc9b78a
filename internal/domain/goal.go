package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// PhaseOutline is one phase of a generated plan outline.
type PhaseOutline struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	DurationWeeks int      `json:"duration_weeks,omitempty"`
	Milestones    []string `json:"milestones,omitempty"`
}

// Goal groups tasks under a plan with a date range. Outline is the generated
// phase breakdown; Progress is the completed/total ratio in [0,1] maintained
// by the surrounding CRUD layer.
type Goal struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Outline     []PhaseOutline `json:"outline,omitempty"`
	Progress    float64        `json:"progress"`
	Status      GoalStatus     `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

type GoalRepository interface {
	Create(ctx context.Context, g *Goal) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*Goal, error)
	Update(ctx context.Context, g *Goal) error
	UpdateProgress(ctx context.Context, userID, id uuid.UUID, progress float64) error
}
