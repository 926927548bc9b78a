package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/session"
	redisstore "github.com/planweave/planweave/internal/store/redis"
)

// PlanStore materializes a confirmed preview. Implementations run the whole
// write in one transaction.
type PlanStore interface {
	CreatePlan(ctx context.Context, goal *domain.Goal, tasks []*domain.Task) error
}

// EventPublisher pushes events to a session's live stream. Publishing is
// best-effort: a failed publish never fails the request.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Config bounds the agent's per-session state.
type Config struct {
	MaxMessages   int
	MaxMemoryKeys int
}

// Agent routes chat messages to skills and owns the preview/confirm flow.
// Only ConfirmPlan writes to the plan store; every skill path is read-only.
type Agent struct {
	sessions *session.Manager
	skills   *SkillRegistry
	tools    *ToolRegistry
	plans    PlanStore
	events   EventPublisher
	cfg      Config
	now      func() time.Time
}

func New(sessions *session.Manager, skills *SkillRegistry, tools *ToolRegistry, plans PlanStore, events EventPublisher, cfg Config) *Agent {
	return &Agent{
		sessions: sessions,
		skills:   skills,
		tools:    tools,
		plans:    plans,
		events:   events,
		cfg:      cfg,
		now:      time.Now,
	}
}

// intent -> skill name. Registration is validated at startup by
// ValidateRouting, so a miss here is a programming error.
var intentSkills = map[Intent]string{
	IntentCreatePlan:  "generate_plan",
	IntentAdjustTasks: "adjust_tasks",
	IntentQueryStatus: "query_status",
	IntentChitchat:    "chitchat",
}

// ValidateRouting confirms every routable intent has a registered skill.
// Called once at startup so a missing registration fails the boot, not a
// conversation.
func (a *Agent) ValidateRouting() error {
	for intent, name := range intentSkills {
		if _, err := a.skills.Get(name); err != nil {
			return fmt.Errorf("agent.Agent.ValidateRouting: intent %q: %w", intent, err)
		}
	}
	return nil
}

// Chat handles one conversation turn. It always returns a reply; a failing
// skill degrades the text instead of surfacing an error to the user.
func (a *Agent) Chat(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (*ChatResult, error) {
	if message == "" {
		return nil, fmt.Errorf("agent.Agent.Chat: empty message: %w", domain.ErrValidation)
	}

	s, err := a.sessions.GetOrCreate(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("agent.Agent.Chat: %w", err)
	}

	s.Lock()
	defer s.Unlock()

	intent := Classify(message, s.PendingPlan() != nil)

	skill, err := a.skills.Get(intentSkills[intent])
	if err != nil {
		return nil, fmt.Errorf("agent.Agent.Chat: %w", err)
	}

	s.AppendMessage(a.cfg.MaxMessages, session.Message{
		Role:      session.RoleUser,
		Content:   message,
		CreatedAt: a.now(),
	})

	res, err := skill.Execute(ctx, &SkillRequest{
		UserID:    userID,
		Session:   s,
		Message:   message,
		MemoryCap: a.cfg.MaxMemoryKeys,
	})
	if err != nil {
		log.Error().Err(err).Str("skill", skill.Name()).Stringer("session_id", s.ID).
			Msg("skill failed, degrading reply")
		res = &SkillResult{Reply: "Sorry, I ran into a problem handling that. Please try again."}
	}

	if res.Preview != nil {
		s.SetPendingPlan(res.Preview)
	}

	s.AppendMessage(a.cfg.MaxMessages, session.Message{
		Role:      session.RoleAssistant,
		Content:   res.Reply,
		CreatedAt: a.now(),
	})

	result := &ChatResult{
		SessionID: s.ID,
		Intent:    intent,
		Skill:     skill.Name(),
		Reply:     res.Reply,
		Preview:   res.Preview,
		Data:      res.Data,
	}

	a.publish(ctx, s.ID, "chat_reply", result)

	return result, nil
}

// ConfirmPlan consumes the session's pending preview and materializes it as
// a Goal plus Tasks in one transaction. The preview is consumed exactly
// once: a second confirm, concurrent or later, fails with Conflict.
func (a *Agent) ConfirmPlan(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Goal, error) {
	s, err := a.sessions.Get(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("agent.Agent.ConfirmPlan: %w", err)
	}

	s.Lock()
	defer s.Unlock()

	preview, err := s.TakePendingPlan()
	if err != nil {
		return nil, fmt.Errorf("agent.Agent.ConfirmPlan: %w", err)
	}

	goal, tasks := a.materialize(userID, preview)

	err = a.plans.CreatePlan(ctx, goal, tasks)
	if err != nil {
		// The preview was not persisted; put it back so the user can
		// retry the confirmation.
		s.SetPendingPlan(preview)
		return nil, fmt.Errorf("agent.Agent.ConfirmPlan: %w", err)
	}

	s.AppendMessage(a.cfg.MaxMessages, session.Message{
		Role:      session.RoleAssistant,
		Content:   fmt.Sprintf("Created goal %q with %d tasks.", goal.Title, len(tasks)),
		CreatedAt: a.now(),
	})

	a.publish(ctx, s.ID, "plan_confirmed", map[string]any{
		"goal_id":    goal.ID,
		"task_count": len(tasks),
	})

	return goal, nil
}

// materialize turns a preview into rows. Batch-internal dependency indices
// resolve to the ids assigned here; an edge that would break the DAG is
// dropped alone, never the task or the batch.
func (a *Agent) materialize(userID uuid.UUID, preview *session.PlanPreview) (*domain.Goal, []*domain.Task) {
	now := a.now()

	goal := &domain.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       preview.GoalTitle,
		Description: preview.GoalDescription,
		StartDate:   preview.StartDate,
		EndDate:     preview.EndDate,
		Outline:     preview.Outline,
		Status:      domain.GoalStatusActive,
		CreatedAt:   now,
	}

	tasks := make([]*domain.Task, len(preview.Tasks))
	for i, pt := range preview.Tasks {
		tasks[i] = &domain.Task{
			ID:          uuid.New(),
			UserID:      userID,
			GoalID:      &goal.ID,
			Title:       pt.Title,
			Description: pt.Description,
			DueDate:     preview.StartDate.AddDate(0, 0, pt.DayOffset),
			DueTime:     pt.DueTime,
			Status:      domain.TaskStatusPending,
			Priority:    pt.Priority,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	edges := make(map[uuid.UUID][]uuid.UUID, len(tasks))
	for i, pt := range preview.Tasks {
		for _, dep := range pt.DependsOnIndex {
			if dep < 0 || dep >= len(tasks) || dep == i {
				continue
			}
			from, to := tasks[i].ID, tasks[dep].ID
			if domain.WouldCreateCycle(edges, from, to) {
				log.Warn().Int("task", i).Int("depends_on", dep).
					Msg("dropping dependency edge that would create a cycle")
				continue
			}
			tasks[i].Dependencies = append(tasks[i].Dependencies, to)
			edges[from] = append(edges[from], to)
		}
	}

	return goal, tasks
}

// ExecuteSkill invokes a skill directly by name, bypassing intent routing.
// For programmatic callers; the same read-only skill contract applies.
func (a *Agent) ExecuteSkill(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, name string, params map[string]any) (*SkillResult, uuid.UUID, error) {
	skill, err := a.skills.Get(name)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("agent.Agent.ExecuteSkill: %w", err)
	}

	s, err := a.sessions.GetOrCreate(userID, sessionID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("agent.Agent.ExecuteSkill: %w", err)
	}

	s.Lock()
	defer s.Unlock()

	message, _ := params["message"].(string)

	res, err := skill.Execute(ctx, &SkillRequest{
		UserID:    userID,
		Session:   s,
		Message:   message,
		Params:    params,
		MemoryCap: a.cfg.MaxMemoryKeys,
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("agent.Agent.ExecuteSkill: %w", err)
	}

	if res.Preview != nil {
		s.SetPendingPlan(res.Preview)
	}

	return res, s.ID, nil
}

// InvokeTool runs a registered tool under the sandbox. The authenticated
// user id always overwrites any caller-supplied user_id argument, so a tool
// can never be pointed at another user's data.
func (a *Agent) InvokeTool(ctx context.Context, userID uuid.UUID, name string, args map[string]any) (*ToolResult, error) {
	scoped := make(map[string]any, len(args)+1)
	for k, v := range args {
		scoped[k] = v
	}
	scoped["user_id"] = userID.String()

	return a.tools.Invoke(ctx, name, scoped)
}

// ListPlugins returns the registered skills and tools.
func (a *Agent) ListPlugins() []PluginInfo {
	var out []PluginInfo

	for _, s := range a.skills.List() {
		out = append(out, PluginInfo{Name: s.Name(), Kind: "skill", Description: s.Description()})
	}
	for _, t := range a.tools.List() {
		out = append(out, PluginInfo{Name: t.Name(), Kind: "tool", Description: t.Description()})
	}

	return out
}

// DeleteSession drops a session and everything in it, pending preview
// included.
func (a *Agent) DeleteSession(userID, sessionID uuid.UUID) {
	a.sessions.Delete(userID, sessionID)
}

type sessionEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (a *Agent) publish(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) {
	if a.events == nil {
		return
	}

	raw, err := json.Marshal(sessionEvent{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Msg("marshal session event")
		return
	}

	err = a.events.Publish(ctx, redisstore.SessionChannel(sessionID), raw)
	if err != nil {
		log.Warn().Err(err).Stringer("session_id", sessionID).Msg("publish session event")
	}
}
