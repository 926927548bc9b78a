package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/server/middleware"
)

type UpsertExecutionLogInput struct {
	Date string `path:"date" doc:"Log date (YYYY-MM-DD)"`
	Body struct {
		GoalID         *uuid.UUID `json:"goal_id,omitempty" doc:"Optional goal the day belongs to"`
		TasksCompleted int        `json:"tasks_completed" minimum:"0" doc:"Tasks completed that day"`
		TasksTotal     int        `json:"tasks_total" minimum:"0" doc:"Tasks assigned that day"`
		Difficulties   string     `json:"difficulties,omitempty" doc:"Free-text difficulties"`
		Feedback       string     `json:"feedback,omitempty" doc:"Free-text feedback"`
	}
}

type UpsertExecutionLogOutput struct {
	Body *domain.ExecutionLog
}

type ListExecutionLogsInput struct {
	GoalID string `query:"goal_id" doc:"Filter by goal ID"`
	Start  string `query:"start" required:"true" doc:"Window start date (YYYY-MM-DD)"`
	End    string `query:"end" required:"true" doc:"Window end date (YYYY-MM-DD)"`
}

type ListExecutionLogsOutput struct {
	Body []*domain.ExecutionLog
}

func RegisterExecutionLogRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-execution-log",
		Method:      http.MethodPut,
		Path:        "/execution-logs/{date}",
		Summary:     "Record or replace the execution log for a day",
		Tags:        []string{"ExecutionLogs"},
	}, func(ctx context.Context, input *UpsertExecutionLogInput) (*UpsertExecutionLogOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		logDate, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid date, expected YYYY-MM-DD")
		}

		// A day's log is frozen once the day has passed; reflection trends
		// depend on history staying put.
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if logDate.Before(today) {
			return nil, huma.Error422UnprocessableEntity("execution log for a past day is immutable")
		}

		if input.Body.TasksCompleted > input.Body.TasksTotal {
			return nil, huma.Error400BadRequest("tasks_completed cannot exceed tasks_total")
		}

		if input.Body.GoalID != nil {
			if _, err := store.Goals().GetByID(ctx, userID, *input.Body.GoalID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("goal not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate goal", err)
			}
		}

		l := &domain.ExecutionLog{
			ID:             uuid.New(),
			UserID:         userID,
			GoalID:         input.Body.GoalID,
			LogDate:        logDate,
			TasksCompleted: input.Body.TasksCompleted,
			TasksTotal:     input.Body.TasksTotal,
			Difficulties:   input.Body.Difficulties,
			Feedback:       input.Body.Feedback,
			CreatedAt:      time.Now(),
		}

		if err := store.ExecutionLogs().Upsert(ctx, l); err != nil {
			return nil, huma.Error500InternalServerError("failed to upsert execution log", err)
		}

		return &UpsertExecutionLogOutput{Body: l}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-execution-logs",
		Method:      http.MethodGet,
		Path:        "/execution-logs",
		Summary:     "List execution logs for a date window",
		Tags:        []string{"ExecutionLogs"},
	}, func(ctx context.Context, input *ListExecutionLogsInput) (*ListExecutionLogsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		start, err := time.Parse("2006-01-02", input.Start)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid start, expected YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", input.End)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid end, expected YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, huma.Error400BadRequest("end must not be before start")
		}

		var goalID *uuid.UUID
		if input.GoalID != "" {
			id, err := uuid.Parse(input.GoalID)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid goal_id")
			}
			goalID = &id
		}

		logs, err := store.ExecutionLogs().ListWindow(ctx, userID, goalID, start, end)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list execution logs", err)
		}

		return &ListExecutionLogsOutput{Body: logs}, nil
	})
}
