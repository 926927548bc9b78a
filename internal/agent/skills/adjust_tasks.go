package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
)

// ReflectionRunner is the slice of the reflection engine this skill needs.
type ReflectionRunner interface {
	Run(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error)
}

// AdjustTasks delegates to the reflection pipeline instead of reinventing
// adjustment logic. It runs an analysis without auto-apply so the user sees
// the recommendations before anything changes.
type AdjustTasks struct {
	reflector ReflectionRunner
}

func NewAdjustTasks(reflector ReflectionRunner) *AdjustTasks {
	return &AdjustTasks{reflector: reflector}
}

func (s *AdjustTasks) Name() string { return "adjust_tasks" }

func (s *AdjustTasks) Description() string {
	return "Analyze recent execution history and recommend task adjustments via the reflection pipeline."
}

func (s *AdjustTasks) Execute(ctx context.Context, req *agent.SkillRequest) (*agent.SkillResult, error) {
	var goalID *uuid.UUID
	if raw, ok := req.Params["goal_id"].(string); ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("skills.AdjustTasks.Execute: goal_id: %w", domain.ErrValidation)
		}
		goalID = &id
	}

	logEntry, _, err := s.reflector.Run(ctx, req.UserID, goalID, false)
	if err != nil {
		return nil, fmt.Errorf("skills.AdjustTasks.Execute: %w", err)
	}

	return &agent.SkillResult{
		Reply: s.describe(logEntry),
		Data: map[string]any{
			"reflection_log_id": logEntry.ID.String(),
			"recommendations":   logEntry.Recommendations,
			"degraded":          logEntry.Degraded,
		},
	}, nil
}

func (s *AdjustTasks) describe(l *domain.ReflectionLog) string {
	if l.Degraded {
		return "I looked at your recent progress but the analysis model was unavailable, so I have no concrete adjustments right now. " + l.Analysis
	}

	rec := l.Recommendations
	if rec.Empty() {
		return "Your recent execution looks fine; I have no adjustments to suggest. " + l.Analysis
	}

	var b strings.Builder
	b.WriteString(l.Analysis)
	b.WriteString("\n")

	if n := len(rec.TaskAdjustments); n > 0 {
		fmt.Fprintf(&b, "I suggest adjusting %d existing task(s).\n", n)
	}
	if n := len(rec.NewTasks); n > 0 {
		fmt.Fprintf(&b, "I suggest adding %d new task(s).\n", n)
	}
	for _, sug := range rec.GeneralSuggestions {
		b.WriteString("- " + sug + "\n")
	}

	fmt.Fprintf(&b, "Apply these with reflection log %s.", l.ID)

	return b.String()
}
