package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// Valid reports whether s is a recognised task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a recognised task priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a single plan item. Dependencies reference other tasks of the same
// user; the dependency relation must stay acyclic at all times (see
// WouldCreateCycle). Version is the optimistic-concurrency token bumped by
// every successful update.
type Task struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	GoalID       *uuid.UUID   `json:"goal_id,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	DueDate      time.Time    `json:"due_date"`
	DueTime      string       `json:"due_time,omitempty"` // "HH:MM", optional
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	Dependencies []uuid.UUID  `json:"dependencies,omitempty"`
	Version      int          `json:"version"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TaskFilter narrows List queries. Zero values mean "no filter".
type TaskFilter struct {
	GoalID  *uuid.UUID
	Status  TaskStatus
	DueFrom time.Time
	DueTo   time.Time
	Limit   int
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*Task, error)
	// Update writes all mutable fields and bumps Version.
	Update(ctx context.Context, t *Task) error
	// ConditionalUpdate writes t only if the stored row still carries
	// expectedVersion; a lost race yields ErrConflict, a missing row
	// ErrNotFound.
	ConditionalUpdate(ctx context.Context, t *Task, expectedVersion int) error
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status TaskStatus) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
