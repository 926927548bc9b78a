package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/server/middleware"
)

type RunReflectionInput struct {
	Body struct {
		GoalID    *uuid.UUID `json:"goal_id,omitempty" doc:"Scope the analysis to one goal"`
		AutoApply bool       `json:"auto_apply,omitempty" doc:"Apply the recommendations immediately"`
	}
}

type RunReflectionOutput struct {
	Body struct {
		Log         *domain.ReflectionLog `json:"log"`
		ApplyResult *domain.ApplyResult   `json:"apply_result,omitempty"`
	}
}

type ApplyReflectionInput struct {
	ID uuid.UUID `path:"id" doc:"Reflection log ID"`
}

type ApplyReflectionOutput struct {
	Body *domain.ApplyResult
}

type ListReflectionLogsInput struct {
	GoalID string `query:"goal_id" doc:"Filter by goal ID"`
	Limit  int    `query:"limit" minimum:"1" maximum:"200" default:"20" doc:"Max results"`
}

type ListReflectionLogsOutput struct {
	Body []*domain.ReflectionLog
}

type GetReflectionLogInput struct {
	ID uuid.UUID `path:"id" doc:"Reflection log ID"`
}

type GetReflectionLogOutput struct {
	Body *domain.ReflectionLog
}

func RegisterReflectionRoutes(api huma.API, store DataStore, engine ReflectionEngine) {
	huma.Register(api, huma.Operation{
		OperationID: "run-reflection",
		Method:      http.MethodPost,
		Path:        "/reflection/run",
		Summary:     "Analyze recent execution history and record recommendations",
		Tags:        []string{"Reflection"},
	}, func(ctx context.Context, input *RunReflectionInput) (*RunReflectionOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		entry, applied, err := engine.Run(ctx, userID, input.Body.GoalID, input.Body.AutoApply)
		if err != nil {
			return nil, huma.Error500InternalServerError("reflection run failed", err)
		}

		out := &RunReflectionOutput{}
		out.Body.Log = entry
		out.Body.ApplyResult = applied

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-reflection",
		Method:      http.MethodPost,
		Path:        "/reflection/logs/{id}/apply",
		Summary:     "Apply the recommendations of a reflection log",
		Tags:        []string{"Reflection"},
	}, func(ctx context.Context, input *ApplyReflectionInput) (*ApplyReflectionOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		result, err := engine.Apply(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("reflection log not found")
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("reflection log already applied")
			}
			return nil, huma.Error500InternalServerError("failed to apply reflection log", err)
		}

		return &ApplyReflectionOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reflection-logs",
		Method:      http.MethodGet,
		Path:        "/reflection/logs",
		Summary:     "List reflection logs",
		Tags:        []string{"Reflection"},
	}, func(ctx context.Context, input *ListReflectionLogsInput) (*ListReflectionLogsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		var goalID *uuid.UUID
		if input.GoalID != "" {
			id, err := uuid.Parse(input.GoalID)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid goal_id")
			}
			goalID = &id
		}

		logs, err := store.Reflections().List(ctx, userID, goalID, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list reflection logs", err)
		}

		return &ListReflectionLogsOutput{Body: logs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reflection-log",
		Method:      http.MethodGet,
		Path:        "/reflection/logs/{id}",
		Summary:     "Get a reflection log by ID",
		Tags:        []string{"Reflection"},
	}, func(ctx context.Context, input *GetReflectionLogInput) (*GetReflectionLogOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		entry, err := store.Reflections().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("reflection log not found")
			}
			return nil, huma.Error500InternalServerError("failed to get reflection log", err)
		}

		return &GetReflectionLogOutput{Body: entry}, nil
	})
}
