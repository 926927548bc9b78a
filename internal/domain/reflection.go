package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdjustmentAction enumerates the field changes a reflection may apply to an
// existing task.
type AdjustmentAction string

const (
	AdjustReschedule     AdjustmentAction = "reschedule"
	AdjustChangePriority AdjustmentAction = "change_priority"
	AdjustMarkCompleted  AdjustmentAction = "mark_completed"
	AdjustMarkSkipped    AdjustmentAction = "mark_skipped"
)

// Valid reports whether a is a recognised adjustment action.
func (a AdjustmentAction) Valid() bool {
	switch a {
	case AdjustReschedule, AdjustChangePriority, AdjustMarkCompleted, AdjustMarkSkipped:
		return true
	default:
		return false
	}
}

// TaskAdjustment is one recommended change to an existing task.
type TaskAdjustment struct {
	TaskID      uuid.UUID        `json:"task_id"`
	Action      AdjustmentAction `json:"action"`
	NewDueDate  string           `json:"new_due_date,omitempty"` // "YYYY-MM-DD"
	NewDueTime  string           `json:"new_due_time,omitempty"` // "HH:MM"
	NewPriority TaskPriority     `json:"new_priority,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// NewTask is one recommended task to create. DependsOn references existing
// task ids; DependsOnNew references other entries of the same batch by index
// and is resolved only after those entries have been created.
type NewTask struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	DaysFromNow  int          `json:"days_from_now"`
	DueTime      string       `json:"due_time,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	DependsOn    []uuid.UUID  `json:"depends_on,omitempty"`
	DependsOnNew []int        `json:"depends_on_new,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// RecommendationSet is the structured output of one reflection run.
type RecommendationSet struct {
	TaskAdjustments    []TaskAdjustment `json:"task_adjustments"`
	NewTasks           []NewTask        `json:"new_tasks"`
	GeneralSuggestions []string         `json:"general_suggestions"`
}

// Empty reports whether the set proposes no changes at all.
func (r RecommendationSet) Empty() bool {
	return len(r.TaskAdjustments) == 0 && len(r.NewTasks) == 0 && len(r.GeneralSuggestions) == 0
}

// ReflectionLog records one analysis pass over a user's execution history.
// IsApplied transitions false -> true exactly once and never reverses;
// applied is terminal.
type ReflectionLog struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	GoalID          *uuid.UUID        `json:"goal_id,omitempty"`
	Analysis        string            `json:"analysis"`
	Recommendations RecommendationSet `json:"recommendations"`
	Degraded        bool              `json:"degraded"`
	IsApplied       bool              `json:"is_applied"`
	AppliedAt       *time.Time        `json:"applied_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ApplyResult tallies the outcome of applying a ReflectionLog. Partial
// failures are counted, never thrown. Skipped counts whole entries
// (adjustments or new tasks) that did not go through; DroppedEdges counts
// dependency edges removed from tasks that were still created. SkippedReasons
// records both.
type ApplyResult struct {
	LogID          uuid.UUID `json:"log_id"`
	Adjusted       int       `json:"adjusted"`
	Created        int       `json:"created"`
	Skipped        int       `json:"skipped"`
	DroppedEdges   int       `json:"dropped_edges"`
	SkippedReasons []string  `json:"skipped_reasons,omitempty"`
}

type ReflectionLogRepository interface {
	Create(ctx context.Context, l *ReflectionLog) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*ReflectionLog, error)
	List(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, limit int) ([]*ReflectionLog, error)
	// MarkApplied flips is_applied false -> true. A log that is already
	// applied yields ErrConflict; a missing log ErrNotFound.
	MarkApplied(ctx context.Context, id uuid.UUID, at time.Time) error
}
