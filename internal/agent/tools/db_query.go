package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
)

// DBQuery gives skills read-only access to the task and goal stores through
// a constrained argument set. It accepts no raw SQL.
type DBQuery struct {
	tasks domain.TaskRepository
	goals domain.GoalRepository
}

func NewDBQuery(tasks domain.TaskRepository, goals domain.GoalRepository) *DBQuery {
	return &DBQuery{tasks: tasks, goals: goals}
}

func (t *DBQuery) Name() string { return "db_query" }

func (t *DBQuery) Description() string {
	return "Read tasks or goals with simple filters (entity, status, goal_id, limit)."
}

func (t *DBQuery) Invoke(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	userID, err := parseUserID(args)
	if err != nil {
		return nil, fmt.Errorf("tools.DBQuery.Invoke: %w", err)
	}

	entity, _ := args["entity"].(string)

	limit := 0
	if f, ok := args["limit"].(float64); ok {
		limit = int(f)
	}

	switch entity {
	case "tasks":
		filter := domain.TaskFilter{Limit: limit}
		if status, ok := args["status"].(string); ok && status != "" {
			filter.Status = domain.TaskStatus(status)
			if !filter.Status.Valid() {
				return nil, fmt.Errorf("tools.DBQuery.Invoke: status %q: %w", status, domain.ErrValidation)
			}
		}
		if raw, ok := args["goal_id"].(string); ok && raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("tools.DBQuery.Invoke: goal_id: %w", domain.ErrValidation)
			}
			filter.GoalID = &id
		}

		tasks, err := t.tasks.List(ctx, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("tools.DBQuery.Invoke: %w", err)
		}
		return &agent.ToolResult{Output: map[string]any{"tasks": tasks}}, nil

	case "goals":
		goals, err := t.goals.List(ctx, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("tools.DBQuery.Invoke: %w", err)
		}
		return &agent.ToolResult{Output: map[string]any{"goals": goals}}, nil

	default:
		return nil, fmt.Errorf("tools.DBQuery.Invoke: entity %q: %w", entity, domain.ErrValidation)
	}
}

func parseUserID(args map[string]any) (uuid.UUID, error) {
	raw, _ := args["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user_id: %w", domain.ErrValidation)
	}
	return id, nil
}
