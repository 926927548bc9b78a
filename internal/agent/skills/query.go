package skills

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
)

// Query answers progress and status questions from the task and goal stores.
// Read-only.
type Query struct {
	tasks domain.TaskRepository
	goals domain.GoalRepository
	now   func() time.Time
}

func NewQuery(tasks domain.TaskRepository, goals domain.GoalRepository) *Query {
	return &Query{tasks: tasks, goals: goals, now: time.Now}
}

func (s *Query) Name() string { return "query_status" }

func (s *Query) Description() string {
	return "Summarize current goals, pending tasks, and overall progress."
}

func (s *Query) Execute(ctx context.Context, req *agent.SkillRequest) (*agent.SkillResult, error) {
	goals, err := s.goals.List(ctx, req.UserID, 5)
	if err != nil {
		return nil, fmt.Errorf("skills.Query.Execute: %w", err)
	}

	pending, err := s.tasks.List(ctx, req.UserID, domain.TaskFilter{
		Status: domain.TaskStatusPending,
		Limit:  20,
	})
	if err != nil {
		return nil, fmt.Errorf("skills.Query.Execute: %w", err)
	}

	return &agent.SkillResult{
		Reply: s.describe(goals, pending),
		Data: map[string]any{
			"goals":         goals,
			"pending_tasks": pending,
		},
	}, nil
}

func (s *Query) describe(goals []*domain.Goal, pending []*domain.Task) string {
	if len(goals) == 0 && len(pending) == 0 {
		return "You have no goals or tasks yet. Tell me what you'd like to achieve and I'll draft a plan."
	}

	var b strings.Builder

	for _, g := range goals {
		if g.Status != domain.GoalStatusActive {
			continue
		}
		fmt.Fprintf(&b, "Goal %q: %.0f%% done, ends %s.\n", g.Title, g.Progress*100, g.EndDate.Format("2006-01-02"))
	}

	if len(pending) == 0 {
		b.WriteString("No pending tasks. Nice work.")
		return b.String()
	}

	today := s.now().Truncate(24 * time.Hour)
	overdue := 0
	fmt.Fprintf(&b, "You have %d pending task(s):\n", len(pending))
	for i, t := range pending {
		if t.DueDate.Before(today) {
			overdue++
		}
		if i < 5 {
			fmt.Fprintf(&b, "  - %s (due %s, %s)\n", t.Title, t.DueDate.Format("2006-01-02"), t.Priority)
		}
	}
	if len(pending) > 5 {
		fmt.Fprintf(&b, "  ... and %d more\n", len(pending)-5)
	}
	if overdue > 0 {
		fmt.Fprintf(&b, "%d of them are overdue.", overdue)
	}

	return b.String()
}
