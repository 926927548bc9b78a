// Package session holds per-conversation state for the agent: message
// history, scratch memory, and the pending plan preview awaiting the user's
// confirmation. State lives in process memory only and expires after a TTL
// of inactivity.
package session

import (
	"time"

	"github.com/planweave/planweave/internal/domain"
)

// MessageRole mirrors the chat roles the language model understands.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one turn of conversation history.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// PlannedTask is one task of a plan preview, dated relative to the plan
// start. DependsOnIndex references earlier entries of the same preview.
type PlannedTask struct {
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	DayOffset      int                 `json:"day_offset"`
	DueTime        string              `json:"due_time,omitempty"`
	Priority       domain.TaskPriority `json:"priority,omitempty"`
	DependsOnIndex []int               `json:"depends_on_index,omitempty"`
}

// PlanPreview is a generated plan held in the session until the user
// confirms or abandons it. Nothing in a preview touches the database.
type PlanPreview struct {
	GoalTitle       string                `json:"goal_title"`
	GoalDescription string                `json:"goal_description,omitempty"`
	StartDate       time.Time             `json:"start_date"`
	EndDate         time.Time             `json:"end_date"`
	Outline         []domain.PhaseOutline `json:"outline,omitempty"`
	Tasks           []PlannedTask         `json:"tasks"`
	Suggestions     []string              `json:"suggestions,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}
