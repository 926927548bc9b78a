// Package agent is the conversational core: it classifies user messages
// into intents, routes them to skills, and manages the plan preview and
// confirmation flow.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/session"
)

// Intent is a recognised category of user message.
type Intent string

const (
	IntentCreatePlan  Intent = "create_plan"
	IntentAdjustTasks Intent = "adjust_tasks"
	IntentQueryStatus Intent = "query_status"
	IntentChitchat    Intent = "chitchat"
)

// SkillRequest carries everything a skill may consult. The session is
// already locked by the agent; skills use its methods directly. MemoryCap
// bounds any SetMemory writes the skill makes.
type SkillRequest struct {
	UserID    uuid.UUID
	Session   *session.Session
	Message   string
	Params    map[string]any
	MemoryCap int
}

// SkillResult is a skill's reply. Preview, when set, is a plan awaiting
// confirmation; the agent stores it in the session, never the skill.
type SkillResult struct {
	Reply   string
	Preview *session.PlanPreview
	Data    map[string]any
}

// Skill is one unit of agent capability, routed to by intent or invoked
// directly by name.
type Skill interface {
	Name() string
	Description() string
	Execute(ctx context.Context, req *SkillRequest) (*SkillResult, error)
}

// ToolResult is the outcome of one sandboxed tool invocation. Execution
// failures are carried in the result (OK false, Err set) rather than raised;
// only an unknown tool name surfaces as a Go error. Retries is always zero,
// the registry never retries.
type ToolResult struct {
	Tool     string        `json:"tool,omitempty"`
	OK       bool          `json:"ok"`
	Output   any           `json:"output,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Retries  int           `json:"retries"`
}

// Tool is a side-capability skills and users may invoke with free-form
// arguments. Implementations must be safe to call concurrently.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ChatResult is the agent's answer to one chat turn.
type ChatResult struct {
	SessionID uuid.UUID            `json:"session_id"`
	Intent    Intent               `json:"intent"`
	Skill     string               `json:"skill,omitempty"`
	Reply     string               `json:"reply"`
	Preview   *session.PlanPreview `json:"preview,omitempty"`
	Data      map[string]any       `json:"data,omitempty"`
}

// PluginInfo describes one registered skill or tool.
type PluginInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"` // "skill" or "tool"
	Description string `json:"description"`
}
