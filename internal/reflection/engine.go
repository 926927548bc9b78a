// Package reflection analyzes a user's execution history against the task
// graph and applies structured adjustments. Run never hard-fails on model
// trouble; Apply is exactly-once and tolerates partial failure inside a
// batch.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/llm"
)

// TxRunner commits an apply batch atomically. *postgres.Store satisfies it.
type TxRunner interface {
	WithReflectionTx(ctx context.Context, fn func(tasks domain.TaskRepository, reflections domain.ReflectionLogRepository) error) error
}

// Config holds the analysis heuristics. Thresholds are tunable defaults.
type Config struct {
	WindowDays         int
	LowCompletion      float64
	ConsecutiveLowDays int
	TrendEpsilon       float64
}

type Engine struct {
	tasks       domain.TaskRepository
	logs        domain.ExecutionLogRepository
	reflections domain.ReflectionLogRepository
	tx          TxRunner
	llm         llm.Gateway
	cfg         Config
	now         func() time.Time
}

func NewEngine(
	tasks domain.TaskRepository,
	logs domain.ExecutionLogRepository,
	reflections domain.ReflectionLogRepository,
	tx TxRunner,
	gateway llm.Gateway,
	cfg Config,
) *Engine {
	return &Engine{
		tasks:       tasks,
		logs:        logs,
		reflections: reflections,
		tx:          tx,
		llm:         gateway,
		cfg:         cfg,
		now:         time.Now,
	}
}

const analysisSystemPrompt = "You are a planning coach. Given execution statistics and the current task list, recommend concrete task adjustments in JSON."

type analysisReply struct {
	Analysis           string                  `json:"analysis"`
	TaskAdjustments    []domain.TaskAdjustment `json:"task_adjustments"`
	NewTasks           []domain.NewTask        `json:"new_tasks"`
	GeneralSuggestions []string                `json:"general_suggestions"`
}

// Run gathers the execution-log window, computes trend statistics, asks the
// model for a recommendation set, and persists a ReflectionLog. A model
// failure degrades the log (empty recommendations, Degraded flag), never the
// operation. With autoApply the freshly created log is applied immediately.
func (e *Engine) Run(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error) {
	now := e.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(e.cfg.WindowDays - 1))

	window, err := e.logs.ListWindow(ctx, userID, goalID, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("reflection.Engine.Run: %w", err)
	}

	entry := &domain.ReflectionLog{
		ID:        uuid.New(),
		UserID:    userID,
		GoalID:    goalID,
		CreatedAt: now,
	}

	if len(window) == 0 {
		entry.Analysis = fmt.Sprintf("No execution history in the last %d days; nothing to adjust.", e.cfg.WindowDays)
	} else {
		stats := Analyze(window, e.cfg.LowCompletion, e.cfg.TrendEpsilon, e.cfg.ConsecutiveLowDays)
		e.analyze(ctx, userID, goalID, window, stats, entry)
	}

	err = e.reflections.Create(ctx, entry)
	if err != nil {
		return nil, nil, fmt.Errorf("reflection.Engine.Run: %w", err)
	}

	if !autoApply {
		return entry, nil, nil
	}

	applied, err := e.Apply(ctx, userID, entry.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reflection.Engine.Run: auto apply: %w", err)
	}
	entry.IsApplied = true

	return entry, applied, nil
}

// analyze fills the log's analysis and recommendations from the model,
// degrading to statistics-only on failure.
func (e *Engine) analyze(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, window []*domain.ExecutionLog, stats Stats, entry *domain.ReflectionLog) {
	snapshot, err := e.tasks.List(ctx, userID, domain.TaskFilter{GoalID: goalID, Limit: 200})
	if err != nil {
		log.Warn().Err(err).Msg("task snapshot unavailable, analysis degraded")
		entry.Degraded = true
		entry.Analysis = e.describeStats(stats)
		return
	}

	var reply analysisReply
	err = e.llm.CompleteJSON(ctx, analysisSystemPrompt, buildAnalysisPrompt(window, snapshot, stats), &reply)
	if err != nil {
		log.Warn().Err(err).Msg("analysis model unavailable, reflection degraded")
		entry.Degraded = true
		entry.Analysis = e.describeStats(stats)
		return
	}

	entry.Analysis = reply.Analysis
	if entry.Analysis == "" {
		entry.Analysis = e.describeStats(stats)
	}
	entry.Recommendations = sanitize(domain.RecommendationSet{
		TaskAdjustments:    reply.TaskAdjustments,
		NewTasks:           reply.NewTasks,
		GeneralSuggestions: reply.GeneralSuggestions,
	})
}

func (e *Engine) describeStats(stats Stats) string {
	s := fmt.Sprintf("Over the last %d logged day(s), average completion was %.0f%% and the trend is %s.",
		stats.Days, stats.AverageCompletion*100, stats.Trend)
	for _, issue := range stats.KeyIssues {
		s += " " + issue + "."
	}
	return s
}

// sanitize drops entries the apply path could never accept, so a malformed
// model reply degrades quietly instead of producing skip noise later.
func sanitize(rec domain.RecommendationSet) domain.RecommendationSet {
	out := domain.RecommendationSet{GeneralSuggestions: rec.GeneralSuggestions}

	for _, adj := range rec.TaskAdjustments {
		if adj.TaskID == uuid.Nil || !adj.Action.Valid() {
			continue
		}
		out.TaskAdjustments = append(out.TaskAdjustments, adj)
	}

	for _, nt := range rec.NewTasks {
		if nt.Title == "" {
			continue
		}
		if nt.DaysFromNow < 0 {
			nt.DaysFromNow = 0
		}
		if !nt.Priority.Valid() {
			nt.Priority = domain.TaskPriorityMedium
		}
		out.NewTasks = append(out.NewTasks, nt)
	}

	return out
}

func buildAnalysisPrompt(window []*domain.ExecutionLog, snapshot []*domain.Task, stats Stats) string {
	prompt := fmt.Sprintf(`## Computed statistics:
- days logged: %d
- average completion: %.2f
- trend: %s
- key issues: %v

## Daily logs (oldest first):
`, stats.Days, stats.AverageCompletion, stats.Trend, stats.KeyIssues)

	for _, l := range window {
		prompt += fmt.Sprintf("- %s: %d/%d completed", l.LogDate.Format("2006-01-02"), l.TasksCompleted, l.TasksTotal)
		if l.Difficulties != "" {
			prompt += ", difficulties: " + l.Difficulties
		}
		if l.Feedback != "" {
			prompt += ", feedback: " + l.Feedback
		}
		prompt += "\n"
	}

	prompt += "\n## Current tasks:\n"
	for _, t := range snapshot {
		prompt += fmt.Sprintf("- %s %q due %s, status %s, priority %s, version %d\n",
			t.ID, t.Title, t.DueDate.Format("2006-01-02"), t.Status, t.Priority, t.Version)
	}

	prompt += `
Return a JSON object:
{
  "analysis": "<short summary of how execution is going>",
  "task_adjustments": [
    {"task_id": "<uuid of an existing task>", "action": "reschedule|change_priority|mark_completed|mark_skipped", "new_due_date": "YYYY-MM-DD", "new_due_time": "HH:MM", "new_priority": "low|medium|high", "reason": "<why>"}
  ],
  "new_tasks": [
    {"title": "<task>", "description": "<text>", "days_from_now": <number>, "due_time": "HH:MM", "priority": "low|medium|high", "depends_on": ["<existing task uuid>"], "depends_on_new": [<indices into this list>], "reason": "<why>"}
  ],
  "general_suggestions": ["<tip>"]
}
Only adjust tasks that exist in the current task list. Prefer few, high-impact changes.`

	return prompt
}

// Apply executes a reflection log's recommendations exactly once. The log is
// claimed and the whole batch committed in a single transaction; entries
// that lost a race, reference deleted tasks, or would break the dependency
// DAG are skipped individually and tallied, never aborting their siblings.
func (e *Engine) Apply(ctx context.Context, userID, logID uuid.UUID) (*domain.ApplyResult, error) {
	entry, err := e.reflections.GetByID(ctx, userID, logID)
	if err != nil {
		return nil, fmt.Errorf("reflection.Engine.Apply: %w", err)
	}
	if entry.IsApplied {
		return nil, fmt.Errorf("reflection.Engine.Apply: already applied: %w", domain.ErrConflict)
	}

	result := &domain.ApplyResult{LogID: logID}
	now := e.now()

	err = e.tx.WithReflectionTx(ctx, func(tasks domain.TaskRepository, reflections domain.ReflectionLogRepository) error {
		// Claim first: of two concurrent applies, the loser sees Conflict
		// here and the transaction rolls back before any task write.
		if err := reflections.MarkApplied(ctx, logID, now); err != nil {
			return err
		}

		if err := e.applyAdjustments(ctx, tasks, userID, entry.Recommendations.TaskAdjustments, result); err != nil {
			return err
		}

		return e.createNewTasks(ctx, tasks, userID, entry.GoalID, entry.Recommendations.NewTasks, now, result)
	})
	if err != nil {
		return nil, fmt.Errorf("reflection.Engine.Apply: %w", err)
	}

	return result, nil
}

func (e *Engine) applyAdjustments(ctx context.Context, tasks domain.TaskRepository, userID uuid.UUID, adjustments []domain.TaskAdjustment, result *domain.ApplyResult) error {
	for _, adj := range adjustments {
		t, err := tasks.GetByID(ctx, userID, adj.TaskID)
		if errors.Is(err, domain.ErrNotFound) {
			skipEntry(result, fmt.Sprintf("adjustment for task %s: task no longer exists", adj.TaskID))
			continue
		}
		if err != nil {
			return err
		}

		expected := t.Version
		if reason, ok := applyAdjustment(t, adj); !ok {
			skipEntry(result, fmt.Sprintf("adjustment for task %s: %s", adj.TaskID, reason))
			continue
		}

		err = tasks.ConditionalUpdate(ctx, t, expected)
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			skipEntry(result, fmt.Sprintf("adjustment for task %s: task changed concurrently", adj.TaskID))
			continue
		}
		if err != nil {
			return err
		}

		result.Adjusted++
	}

	return nil
}

// applyAdjustment mutates t per the action. Returns ok=false with a reason
// when the adjustment itself is malformed.
func applyAdjustment(t *domain.Task, adj domain.TaskAdjustment) (string, bool) {
	switch adj.Action {
	case domain.AdjustReschedule:
		due, err := time.Parse("2006-01-02", adj.NewDueDate)
		if err != nil {
			return fmt.Sprintf("bad new_due_date %q", adj.NewDueDate), false
		}
		t.DueDate = due
		if adj.NewDueTime != "" {
			t.DueTime = adj.NewDueTime
		}
	case domain.AdjustChangePriority:
		if !adj.NewPriority.Valid() {
			return fmt.Sprintf("bad new_priority %q", adj.NewPriority), false
		}
		t.Priority = adj.NewPriority
	case domain.AdjustMarkCompleted:
		t.Status = domain.TaskStatusCompleted
	case domain.AdjustMarkSkipped:
		t.Status = domain.TaskStatusSkipped
	default:
		return fmt.Sprintf("unknown action %q", adj.Action), false
	}

	return "", true
}

// createNewTasks runs two passes: the first creates every entry with only
// its references to existing tasks, the second attaches batch-internal
// dependencies now that the referenced entries have ids. Every edge passes
// the cycle guard; a bad edge is dropped alone.
func (e *Engine) createNewTasks(ctx context.Context, tasks domain.TaskRepository, userID uuid.UUID, goalID *uuid.UUID, newTasks []domain.NewTask, now time.Time, result *domain.ApplyResult) error {
	if len(newTasks) == 0 {
		return nil
	}

	snapshot, err := tasks.List(ctx, userID, domain.TaskFilter{Limit: 1000})
	if err != nil {
		return err
	}
	edges := domain.DependencyEdges(snapshot)
	existing := make(map[uuid.UUID]bool, len(snapshot))
	for _, t := range snapshot {
		existing[t.ID] = true
	}

	created := make([]*domain.Task, len(newTasks))

	for i, nt := range newTasks {
		t := &domain.Task{
			ID:          uuid.New(),
			UserID:      userID,
			GoalID:      goalID,
			Title:       nt.Title,
			Description: nt.Description,
			DueDate:     now.Truncate(24 * time.Hour).AddDate(0, 0, nt.DaysFromNow),
			DueTime:     nt.DueTime,
			Status:      domain.TaskStatusPending,
			Priority:    nt.Priority,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		for _, dep := range nt.DependsOn {
			switch {
			case !existing[dep]:
				noteEdge(result, fmt.Sprintf("new task %q: dependency %s does not exist, edge dropped", nt.Title, dep))
			case domain.WouldCreateCycle(edges, t.ID, dep):
				noteEdge(result, fmt.Sprintf("new task %q: dependency %s would create a cycle, edge dropped", nt.Title, dep))
			default:
				t.Dependencies = append(t.Dependencies, dep)
			}
		}

		if err := tasks.Create(ctx, t); err != nil {
			return err
		}

		created[i] = t
		existing[t.ID] = true
		if len(t.Dependencies) > 0 {
			edges[t.ID] = t.Dependencies
		}
		result.Created++
	}

	// Second pass: batch-internal references.
	for i, nt := range newTasks {
		if len(nt.DependsOnNew) == 0 {
			continue
		}
		t := created[i]

		attached := false
		for _, ref := range nt.DependsOnNew {
			switch {
			case ref < 0 || ref >= len(created) || ref == i:
				noteEdge(result, fmt.Sprintf("new task %q: batch reference %d is out of range, edge dropped", nt.Title, ref))
			case domain.WouldCreateCycle(edges, t.ID, created[ref].ID):
				noteEdge(result, fmt.Sprintf("new task %q: batch reference %d would create a cycle, edge dropped", nt.Title, ref))
			default:
				t.Dependencies = append(t.Dependencies, created[ref].ID)
				edges[t.ID] = t.Dependencies
				attached = true
			}
		}

		if attached {
			if err := tasks.Update(ctx, t); err != nil {
				return err
			}
		}
	}

	return nil
}

// skipEntry records one skipped adjustment or creation.
func skipEntry(r *domain.ApplyResult, reason string) {
	r.Skipped++
	r.SkippedReasons = append(r.SkippedReasons, reason)
}

// noteEdge records a dropped dependency edge. The entry is not counted as
// skipped, the task itself still went through.
func noteEdge(r *domain.ApplyResult, reason string) {
	r.DroppedEdges++
	r.SkippedReasons = append(r.SkippedReasons, reason)
}
