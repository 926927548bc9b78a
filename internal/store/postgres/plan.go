package postgres

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/internal/domain"
)

// CreatePlan writes a goal and its tasks in one transaction, so a cancelled
// or failed confirmation leaves no partial plan behind.
func (s *Store) CreatePlan(ctx context.Context, goal *domain.Goal, tasks []*domain.Task) error {
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.goals.Create(ctx, goal); err != nil {
			return err
		}
		for _, t := range tasks {
			if err := tx.tasks.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres.Store.CreatePlan: %w", err)
	}

	return nil
}

// WithReflectionTx runs fn against transaction-bound task and reflection-log
// repositories. The reflection apply path claims the log and writes the task
// batch inside one transaction, so a failed apply leaves the log unclaimed.
func (s *Store) WithReflectionTx(ctx context.Context, fn func(tasks domain.TaskRepository, reflections domain.ReflectionLogRepository) error) error {
	return s.WithTx(ctx, func(tx *Store) error {
		return fn(tx.Tasks(), tx.Reflections())
	})
}
