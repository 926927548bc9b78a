package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planweave/planweave/internal/domain"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repo code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool        *pgxpool.Pool
	db          querier
	tasks       *TaskRepo
	goals       *GoalRepo
	execLogs    *ExecutionLogRepo
	reflections *ReflectionLogRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return newStore(pool, pool), nil
}

func newStore(pool *pgxpool.Pool, db querier) *Store {
	return &Store{
		pool:        pool,
		db:          db,
		tasks:       &TaskRepo{db: db},
		goals:       &GoalRepo{db: db},
		execLogs:    &ExecutionLogRepo{db: db},
		reflections: &ReflectionLogRepo{db: db},
	}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping reports connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	err := s.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}

// WithTx runs fn against a transaction-bound view of the store. The
// transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.pool == nil {
		return fmt.Errorf("postgres.Store.WithTx: store is already transaction-bound")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres.Store.WithTx: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = fn(newStore(nil, tx))
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("postgres.Store.WithTx: commit: %w", err)
	}

	return nil
}

func (s *Store) Tasks() domain.TaskRepository                 { return s.tasks }
func (s *Store) Goals() domain.GoalRepository                 { return s.goals }
func (s *Store) ExecutionLogs() domain.ExecutionLogRepository { return s.execLogs }
func (s *Store) Reflections() domain.ReflectionLogRepository  { return s.reflections }
