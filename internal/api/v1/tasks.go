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

type CreateTaskInput struct {
	Body struct {
		GoalID       *uuid.UUID  `json:"goal_id,omitempty" doc:"Optional parent goal ID"`
		Title        string      `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description  string      `json:"description,omitempty" doc:"Task description"`
		DueDate      string      `json:"due_date" doc:"Due date (YYYY-MM-DD)"`
		DueTime      string      `json:"due_time,omitempty" pattern:"^[0-2][0-9]:[0-5][0-9]$" doc:"Optional due time (HH:MM)"`
		Priority     string      `json:"priority,omitempty" doc:"Priority (low, medium, high; default medium)"`
		Dependencies []uuid.UUID `json:"dependencies,omitempty" doc:"IDs of tasks this task depends on"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	GoalID  string `query:"goal_id" doc:"Filter by goal ID"`
	Status  string `query:"status" doc:"Filter by status"`
	DueFrom string `query:"due_from" doc:"Earliest due date (YYYY-MM-DD)"`
	DueTo   string `query:"due_to" doc:"Latest due date (YYYY-MM-DD)"`
	Limit   int    `query:"limit" minimum:"1" maximum:"1000" default:"200" doc:"Max results"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title        string       `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description  *string      `json:"description,omitempty" doc:"Task description"`
		DueDate      string       `json:"due_date,omitempty" doc:"Due date (YYYY-MM-DD)"`
		DueTime      *string      `json:"due_time,omitempty" doc:"Due time (HH:MM), empty string clears"`
		Priority     string       `json:"priority,omitempty" doc:"Priority (low, medium, high)"`
		Dependencies *[]uuid.UUID `json:"dependencies,omitempty" doc:"Replacement dependency list"`
		Version      *int         `json:"version,omitempty" doc:"Expected version for optimistic concurrency"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type TransitionTaskStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Status string `json:"status" minLength:"1" doc:"Target status (pending, completed, skipped)"`
	}
}

type TransitionTaskStatusOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		dueDate, err := time.Parse("2006-01-02", input.Body.DueDate)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid due_date, expected YYYY-MM-DD")
		}

		priority := domain.TaskPriorityMedium
		if input.Body.Priority != "" {
			priority = domain.TaskPriority(input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown priority: " + input.Body.Priority)
			}
		}

		if input.Body.GoalID != nil {
			if _, err := store.Goals().GetByID(ctx, userID, *input.Body.GoalID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("goal not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate goal", err)
			}
		}

		now := time.Now()
		t := &domain.Task{
			ID:          uuid.New(),
			UserID:      userID,
			GoalID:      input.Body.GoalID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			DueDate:     dueDate,
			DueTime:     input.Body.DueTime,
			Status:      domain.TaskStatusPending,
			Priority:    priority,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if len(input.Body.Dependencies) > 0 {
			deps, err := checkDependencies(ctx, store.Tasks(), userID, t.ID, input.Body.Dependencies)
			if err != nil {
				return nil, err
			}
			t.Dependencies = deps
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		filter := domain.TaskFilter{Limit: input.Limit}
		if input.GoalID != "" {
			goalID, err := uuid.Parse(input.GoalID)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid goal_id")
			}
			filter.GoalID = &goalID
		}
		if input.Status != "" {
			status := domain.TaskStatus(input.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Status)
			}
			filter.Status = status
		}
		if input.DueFrom != "" {
			from, err := time.Parse("2006-01-02", input.DueFrom)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid due_from, expected YYYY-MM-DD")
			}
			filter.DueFrom = from
		}
		if input.DueTo != "" {
			to, err := time.Parse("2006-01-02", input.DueTo)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid due_to, expected YYYY-MM-DD")
			}
			filter.DueTo = to
		}

		tasks, err := store.Tasks().List(ctx, userID, filter)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update a task's fields",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Description != nil {
			existing.Description = *input.Body.Description
		}
		if input.Body.DueDate != "" {
			dueDate, err := time.Parse("2006-01-02", input.Body.DueDate)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid due_date, expected YYYY-MM-DD")
			}
			existing.DueDate = dueDate
		}
		if input.Body.DueTime != nil {
			existing.DueTime = *input.Body.DueTime
		}
		if input.Body.Priority != "" {
			priority := domain.TaskPriority(input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown priority: " + input.Body.Priority)
			}
			existing.Priority = priority
		}
		if input.Body.Dependencies != nil {
			deps, err := checkDependencies(ctx, store.Tasks(), userID, existing.ID, *input.Body.Dependencies)
			if err != nil {
				return nil, err
			}
			existing.Dependencies = deps
		}
		existing.UpdatedAt = time.Now()

		if input.Body.Version != nil {
			err = store.Tasks().ConditionalUpdate(ctx, existing, *input.Body.Version)
		} else {
			err = store.Tasks().Update(ctx, existing)
		}
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("task was modified concurrently, re-fetch and retry")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}
		existing.Version++

		return &UpdateTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-task-status",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/status",
		Summary:     "Transition task status",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TransitionTaskStatusInput) (*TransitionTaskStatusOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		status := domain.TaskStatus(input.Body.Status)
		if !status.Valid() {
			return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if err := store.Tasks().UpdateStatus(ctx, userID, input.ID, status); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to update task status", err)
		}

		existing.Status = status
		existing.UpdatedAt = time.Now()

		return &TransitionTaskStatusOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Tasks().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		return nil, nil
	})
}

// checkDependencies verifies every referenced task exists and that adding
// the edges keeps the user's dependency graph acyclic.
func checkDependencies(ctx context.Context, tasks domain.TaskRepository, userID, taskID uuid.UUID, deps []uuid.UUID) ([]uuid.UUID, error) {
	all, err := tasks.List(ctx, userID, domain.TaskFilter{})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load tasks for dependency check", err)
	}

	known := make(map[uuid.UUID]bool, len(all))
	for _, t := range all {
		known[t.ID] = true
	}

	edges := domain.DependencyEdges(all)
	// The task's own edges are being replaced wholesale.
	delete(edges, taskID)

	out := make([]uuid.UUID, 0, len(deps))
	for _, dep := range deps {
		if dep == taskID {
			return nil, huma.Error400BadRequest("task cannot depend on itself")
		}
		if !known[dep] {
			return nil, huma.Error400BadRequest("dependency not found: " + dep.String())
		}
		if domain.WouldCreateCycle(edges, taskID, dep) {
			return nil, huma.Error400BadRequest("dependency would create a cycle: "+dep.String(), domain.ErrDependencyCycle)
		}
		edges[taskID] = append(edges[taskID], dep)
		out = append(out, dep)
	}

	return out, nil
}
