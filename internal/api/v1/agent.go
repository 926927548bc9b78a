package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/server/middleware"
	"github.com/planweave/planweave/internal/session"
)

type ChatInput struct {
	Body struct {
		SessionID *uuid.UUID `json:"session_id,omitempty" doc:"Session to resume; omit to start a new one"`
		Message   string     `json:"message" minLength:"1" maxLength:"4000" doc:"User message"`
	}
}

type ChatOutput struct {
	Body *agent.ChatResult
}

type ConfirmPlanInput struct {
	Body struct {
		SessionID uuid.UUID `json:"session_id" doc:"Session holding the pending plan preview"`
	}
}

type ConfirmPlanOutput struct {
	Body *domain.Goal
}

type ExecuteSkillInput struct {
	Name string `path:"name" doc:"Skill name"`
	Body struct {
		SessionID *uuid.UUID     `json:"session_id,omitempty" doc:"Session to resume; omit to start a new one"`
		Params    map[string]any `json:"params,omitempty" doc:"Skill parameters"`
	}
}

type ExecuteSkillOutput struct {
	Body struct {
		SessionID uuid.UUID            `json:"session_id"`
		Reply     string               `json:"reply"`
		Preview   *session.PlanPreview `json:"preview,omitempty"`
		Data      map[string]any       `json:"data,omitempty"`
	}
}

type InvokeToolInput struct {
	Name string `path:"name" doc:"Tool name"`
	Body struct {
		Args map[string]any `json:"args,omitempty" doc:"Tool arguments"`
	}
}

type InvokeToolOutput struct {
	Body *agent.ToolResult
}

type ListPluginsOutput struct {
	Body []agent.PluginInfo
}

type DeleteSessionInput struct {
	ID uuid.UUID `path:"id" doc:"Session ID"`
}

func RegisterAgentRoutes(api huma.API, chatAgent ChatAgent) {
	huma.Register(api, huma.Operation{
		OperationID: "agent-chat",
		Method:      http.MethodPost,
		Path:        "/agent/chat",
		Summary:     "Send a chat message to the planning agent",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		result, err := chatAgent.Chat(ctx, userID, input.Body.SessionID, input.Body.Message)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error400BadRequest("invalid message")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("session not found")
			}
			return nil, huma.Error500InternalServerError("chat failed", err)
		}

		return &ChatOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-confirm-plan",
		Method:      http.MethodPost,
		Path:        "/agent/confirm-plan",
		Summary:     "Confirm the pending plan preview and persist it",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, input *ConfirmPlanInput) (*ConfirmPlanOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		goal, err := chatAgent.ConfirmPlan(ctx, userID, input.Body.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("session not found")
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("no pending plan to confirm")
			}
			return nil, huma.Error500InternalServerError("failed to confirm plan", err)
		}

		return &ConfirmPlanOutput{Body: goal}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-execute-skill",
		Method:      http.MethodPost,
		Path:        "/agent/skills/{name}",
		Summary:     "Execute a skill directly by name",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, input *ExecuteSkillInput) (*ExecuteSkillOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		res, sessionID, err := chatAgent.ExecuteSkill(ctx, userID, input.Body.SessionID, input.Name, input.Body.Params)
		if err != nil {
			if errors.Is(err, domain.ErrSkillNotFound) {
				return nil, huma.Error404NotFound("unknown skill: " + input.Name)
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("session not found")
			}
			return nil, huma.Error500InternalServerError("skill execution failed", err)
		}

		out := &ExecuteSkillOutput{}
		out.Body.SessionID = sessionID
		out.Body.Reply = res.Reply
		out.Body.Preview = res.Preview
		out.Body.Data = res.Data

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-invoke-tool",
		Method:      http.MethodPost,
		Path:        "/agent/tools/{name}",
		Summary:     "Invoke a tool directly by name",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, input *InvokeToolInput) (*InvokeToolOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		result, err := chatAgent.InvokeTool(ctx, userID, input.Name, input.Body.Args)
		if err != nil {
			if errors.Is(err, domain.ErrToolNotFound) {
				return nil, huma.Error404NotFound("unknown tool: " + input.Name)
			}
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error400BadRequest("invalid tool arguments")
			}
			return nil, huma.Error500InternalServerError("tool invocation failed", err)
		}

		return &InvokeToolOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-list-plugins",
		Method:      http.MethodGet,
		Path:        "/agent/plugins",
		Summary:     "List registered skills and tools",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, _ *struct{}) (*ListPluginsOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		return &ListPluginsOutput{Body: chatAgent.ListPlugins()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-delete-session",
		Method:      http.MethodDelete,
		Path:        "/agent/sessions/{id}",
		Summary:     "Delete a conversation session",
		Tags:        []string{"Agent"},
	}, func(ctx context.Context, input *DeleteSessionInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		chatAgent.DeleteSession(userID, input.ID)

		return nil, nil
	})
}
