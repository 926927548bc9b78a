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

type ListGoalsInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
}

type ListGoalsOutput struct {
	Body []*domain.Goal
}

type GetGoalInput struct {
	ID uuid.UUID `path:"id" doc:"Goal ID"`
}

type GetGoalOutput struct {
	Body *domain.Goal
}

type UpdateGoalInput struct {
	ID   uuid.UUID `path:"id" doc:"Goal ID"`
	Body struct {
		Title       string  `json:"title,omitempty" maxLength:"500" doc:"Goal title"`
		Description *string `json:"description,omitempty" doc:"Goal description"`
		Status      string  `json:"status,omitempty" doc:"Goal status (active, completed, abandoned)"`
	}
}

type UpdateGoalOutput struct {
	Body *domain.Goal
}

type UpdateGoalProgressInput struct {
	ID   uuid.UUID `path:"id" doc:"Goal ID"`
	Body struct {
		Progress float64 `json:"progress" minimum:"0" maximum:"1" doc:"Completion ratio in [0,1]"`
	}
}

type UpdateGoalProgressOutput struct {
	Body *domain.Goal
}

func RegisterGoalRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-goals",
		Method:      http.MethodGet,
		Path:        "/goals",
		Summary:     "List goals",
		Tags:        []string{"Goals"},
	}, func(ctx context.Context, input *ListGoalsInput) (*ListGoalsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		goals, err := store.Goals().List(ctx, userID, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list goals", err)
		}

		return &ListGoalsOutput{Body: goals}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-goal",
		Method:      http.MethodGet,
		Path:        "/goals/{id}",
		Summary:     "Get a goal by ID",
		Tags:        []string{"Goals"},
	}, func(ctx context.Context, input *GetGoalInput) (*GetGoalOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		g, err := store.Goals().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("goal not found")
			}
			return nil, huma.Error500InternalServerError("failed to get goal", err)
		}

		return &GetGoalOutput{Body: g}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-goal",
		Method:      http.MethodPut,
		Path:        "/goals/{id}",
		Summary:     "Update a goal",
		Tags:        []string{"Goals"},
	}, func(ctx context.Context, input *UpdateGoalInput) (*UpdateGoalOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Goals().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("goal not found")
			}
			return nil, huma.Error500InternalServerError("failed to get goal", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Description != nil {
			existing.Description = *input.Body.Description
		}
		if input.Body.Status != "" {
			status := domain.GoalStatus(input.Body.Status)
			switch status {
			case domain.GoalStatusActive, domain.GoalStatusCompleted, domain.GoalStatusAbandoned:
			default:
				return nil, huma.Error400BadRequest("unknown goal status: " + input.Body.Status)
			}
			existing.Status = status
		}

		if err := store.Goals().Update(ctx, existing); err != nil {
			return nil, huma.Error500InternalServerError("failed to update goal", err)
		}

		return &UpdateGoalOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-goal-progress",
		Method:      http.MethodPatch,
		Path:        "/goals/{id}/progress",
		Summary:     "Update goal progress",
		Tags:        []string{"Goals"},
	}, func(ctx context.Context, input *UpdateGoalProgressInput) (*UpdateGoalProgressOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Goals().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("goal not found")
			}
			return nil, huma.Error500InternalServerError("failed to get goal", err)
		}

		if err := store.Goals().UpdateProgress(ctx, userID, input.ID, input.Body.Progress); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("goal not found")
			}
			return nil, huma.Error500InternalServerError("failed to update goal progress", err)
		}

		existing.Progress = input.Body.Progress

		return &UpdateGoalProgressOutput{Body: existing}, nil
	})
}
