package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
	Goals() domain.GoalRepository
	ExecutionLogs() domain.ExecutionLogRepository
	Reflections() domain.ReflectionLogRepository
}

// ChatAgent abstracts the conversational agent for handler testing.
// *agent.Agent satisfies this interface.
type ChatAgent interface {
	Chat(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (*agent.ChatResult, error)
	ConfirmPlan(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Goal, error)
	ExecuteSkill(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, name string, params map[string]any) (*agent.SkillResult, uuid.UUID, error)
	InvokeTool(ctx context.Context, userID uuid.UUID, name string, args map[string]any) (*agent.ToolResult, error)
	ListPlugins() []agent.PluginInfo
	DeleteSession(userID, sessionID uuid.UUID)
}

// ReflectionEngine abstracts the reflection pipeline for handler testing.
// *reflection.Engine satisfies this interface.
type ReflectionEngine interface {
	Run(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error)
	Apply(ctx context.Context, userID, logID uuid.UUID) (*domain.ApplyResult, error)
}
