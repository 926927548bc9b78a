package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExecutionLog is the daily record of tasks completed versus assigned, plus
// free-text feedback. One row per user per day; owned by the surrounding
// CRUD layer and treated as immutable by the agent core once the day has
// passed.
type ExecutionLog struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	GoalID         *uuid.UUID `json:"goal_id,omitempty"`
	LogDate        time.Time  `json:"log_date"`
	TasksCompleted int        `json:"tasks_completed"`
	TasksTotal     int        `json:"tasks_total"`
	Difficulties   string     `json:"difficulties,omitempty"`
	Feedback       string     `json:"feedback,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CompletionRatio returns completed/total, or 0 for an empty day.
func (l *ExecutionLog) CompletionRatio() float64 {
	if l.TasksTotal <= 0 {
		return 0
	}
	return float64(l.TasksCompleted) / float64(l.TasksTotal)
}

type ExecutionLogRepository interface {
	// Upsert inserts or replaces the row for (user, log_date).
	Upsert(ctx context.Context, l *ExecutionLog) error
	// ListWindow returns logs in [start, end] ordered by date ascending,
	// optionally scoped to one goal.
	ListWindow(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, start, end time.Time) ([]*ExecutionLog, error)
}
