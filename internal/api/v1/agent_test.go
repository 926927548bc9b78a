package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/agent"
	v1 "github.com/planweave/planweave/internal/api/v1"
	"github.com/planweave/planweave/internal/domain"
)

// ---------------------------------------------------------------------------
// TestChat
// ---------------------------------------------------------------------------

func TestChat(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("new_session", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			chatFunc: func(_ context.Context, uid uuid.UUID, sid *uuid.UUID, message string) (*agent.ChatResult, error) {
				assert.Equal(t, userID, uid)
				assert.Nil(t, sid, "no session_id means a fresh session")
				assert.Equal(t, "I want to learn Go in 8 weeks", message)
				return &agent.ChatResult{
					SessionID: sessionID,
					Intent:    agent.IntentCreatePlan,
					Skill:     "generate_plan",
					Reply:     "Here is a draft plan.",
				}, nil
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/chat", map[string]any{
			"message": "I want to learn Go in 8 weeks",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body agent.ChatResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, sessionID, body.SessionID)
		assert.Equal(t, agent.IntentCreatePlan, body.Intent)
		assert.Equal(t, "Here is a draft plan.", body.Reply)
	})

	t.Run("resume_session", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			chatFunc: func(_ context.Context, _ uuid.UUID, sid *uuid.UUID, _ string) (*agent.ChatResult, error) {
				require.NotNil(t, sid)
				assert.Equal(t, sessionID, *sid)
				return &agent.ChatResult{SessionID: sessionID, Reply: "ok"}, nil
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/chat", map[string]any{
			"session_id": sessionID.String(),
			"message":    "how is it going",
		})

		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("unknown_session", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			chatFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _ string) (*agent.ChatResult, error) {
				return nil, domain.ErrNotFound
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/chat", map[string]any{
			"session_id": uuid.New().String(),
			"message":    "hello",
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("missing_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAgentRoutes(api, &mockChatAgent{})

		resp := api.PostCtx(context.Background(), "/agent/chat", map[string]any{
			"message": "hello",
		})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestConfirmPlan
// ---------------------------------------------------------------------------

func TestConfirmPlanEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		goalID := uuid.New()
		_, api := humatest.New(t)
		mock := &mockChatAgent{
			confirmPlanFunc: func(_ context.Context, uid, sid uuid.UUID) (*domain.Goal, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, sessionID, sid)
				return &domain.Goal{ID: goalID, UserID: userID, Title: "Learn Go", Status: domain.GoalStatusActive}, nil
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/confirm-plan", map[string]any{
			"session_id": sessionID.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Goal
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, goalID, body.ID)
		assert.Equal(t, domain.GoalStatusActive, body.Status)
	})

	t.Run("no_pending_plan", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			confirmPlanFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Goal, error) {
				return nil, domain.ErrConflict
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/confirm-plan", map[string]any{
			"session_id": sessionID.String(),
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("unknown_session", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			confirmPlanFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Goal, error) {
				return nil, domain.ErrNotFound
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/confirm-plan", map[string]any{
			"session_id": uuid.New().String(),
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestExecuteSkill / TestInvokeTool
// ---------------------------------------------------------------------------

func TestExecuteSkillEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			executeSkillFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, name string, params map[string]any) (*agent.SkillResult, uuid.UUID, error) {
				assert.Equal(t, "query_status", name)
				assert.Equal(t, "overview", params["mode"])
				return &agent.SkillResult{Reply: "3 tasks pending"}, sessionID, nil
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/skills/query_status", map[string]any{
			"params": map[string]any{"mode": "overview"},
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "3 tasks pending")
		assert.Contains(t, resp.Body.String(), sessionID.String())
	})

	t.Run("unknown_skill", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			executeSkillFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _ string, _ map[string]any) (*agent.SkillResult, uuid.UUID, error) {
				return nil, uuid.Nil, domain.ErrSkillNotFound
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/skills/nope", map[string]any{})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("execution_failure", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			executeSkillFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _ string, _ map[string]any) (*agent.SkillResult, uuid.UUID, error) {
				return nil, uuid.Nil, errors.New("backend down")
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/skills/query_status", map[string]any{})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestInvokeToolEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			invokeToolFunc: func(_ context.Context, uid uuid.UUID, name string, args map[string]any) (*agent.ToolResult, error) {
				assert.Equal(t, userID, uid, "the authenticated user scopes the invocation")
				assert.Equal(t, "web_search", name)
				assert.Equal(t, "golang testing", args["query"])
				return &agent.ToolResult{Output: []string{"result one"}}, nil
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/tools/web_search", map[string]any{
			"args": map[string]any{"query": "golang testing"},
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "result one")
	})

	t.Run("unknown_tool", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			invokeToolFunc: func(_ context.Context, _ uuid.UUID, _ string, _ map[string]any) (*agent.ToolResult, error) {
				return nil, domain.ErrToolNotFound
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/tools/nope", map[string]any{})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("invalid_args", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		mock := &mockChatAgent{
			invokeToolFunc: func(_ context.Context, _ uuid.UUID, _ string, _ map[string]any) (*agent.ToolResult, error) {
				return nil, domain.ErrValidation
			},
		}
		v1.RegisterAgentRoutes(api, mock)

		resp := api.PostCtx(userCtx(userID), "/agent/tools/send_notification", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestListPlugins / TestDeleteSession
// ---------------------------------------------------------------------------

func TestListPluginsEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	_, api := humatest.New(t)
	mock := &mockChatAgent{
		listPluginsFunc: func() []agent.PluginInfo {
			return []agent.PluginInfo{
				{Name: "generate_plan", Kind: "skill", Description: "Draft a plan"},
				{Name: "web_search", Kind: "tool", Description: "Search the web"},
			}
		},
	}
	v1.RegisterAgentRoutes(api, mock)

	resp := api.GetCtx(userCtx(userID), "/agent/plugins")

	require.Equal(t, http.StatusOK, resp.Code)

	var body []agent.PluginInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "generate_plan", body[0].Name)
	assert.Equal(t, "tool", body[1].Kind)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	var deleted bool
	_, api := humatest.New(t)
	mock := &mockChatAgent{
		deleteSessionFunc: func(uid, sid uuid.UUID) {
			deleted = true
			assert.Equal(t, userID, uid)
			assert.Equal(t, sessionID, sid)
		},
	}
	v1.RegisterAgentRoutes(api, mock)

	resp := api.DeleteCtx(userCtx(userID), "/agent/sessions/"+sessionID.String())

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.True(t, deleted)
}
