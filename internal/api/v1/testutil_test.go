package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks       domain.TaskRepository
	goals       domain.GoalRepository
	execLogs    domain.ExecutionLogRepository
	reflections domain.ReflectionLogRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository                 { return m.tasks }
func (m *mockDataStore) Goals() domain.GoalRepository                 { return m.goals }
func (m *mockDataStore) ExecutionLogs() domain.ExecutionLogRepository { return m.execLogs }
func (m *mockDataStore) Reflections() domain.ReflectionLogRepository  { return m.reflections }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc            func(ctx context.Context, t *domain.Task) error
	getByIDFunc           func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	listFunc              func(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	updateFunc            func(ctx context.Context, t *domain.Task) error
	conditionalUpdateFunc func(ctx context.Context, t *domain.Task, expectedVersion int) error
	updateStatusFunc      func(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error
	deleteFunc            func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockTaskRepo) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return m.listFunc(ctx, userID, filter)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) ConditionalUpdate(ctx context.Context, t *domain.Task, expectedVersion int) error {
	return m.conditionalUpdateFunc(ctx, t, expectedVersion)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error {
	return m.updateStatusFunc(ctx, userID, id, status)
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFunc(ctx, userID, id)
}

// ---------------------------------------------------------------------------
// Mock GoalRepository
// ---------------------------------------------------------------------------

type mockGoalRepo struct {
	createFunc         func(ctx context.Context, g *domain.Goal) error
	getByIDFunc        func(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error)
	listFunc           func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Goal, error)
	updateFunc         func(ctx context.Context, g *domain.Goal) error
	updateProgressFunc func(ctx context.Context, userID, id uuid.UUID, progress float64) error
}

func (m *mockGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	return m.createFunc(ctx, g)
}

func (m *mockGoalRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockGoalRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Goal, error) {
	return m.listFunc(ctx, userID, limit)
}

func (m *mockGoalRepo) Update(ctx context.Context, g *domain.Goal) error {
	return m.updateFunc(ctx, g)
}

func (m *mockGoalRepo) UpdateProgress(ctx context.Context, userID, id uuid.UUID, progress float64) error {
	return m.updateProgressFunc(ctx, userID, id, progress)
}

// ---------------------------------------------------------------------------
// Mock ExecutionLogRepository
// ---------------------------------------------------------------------------

type mockExecutionLogRepo struct {
	upsertFunc     func(ctx context.Context, l *domain.ExecutionLog) error
	listWindowFunc func(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, start, end time.Time) ([]*domain.ExecutionLog, error)
}

func (m *mockExecutionLogRepo) Upsert(ctx context.Context, l *domain.ExecutionLog) error {
	return m.upsertFunc(ctx, l)
}

func (m *mockExecutionLogRepo) ListWindow(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, start, end time.Time) ([]*domain.ExecutionLog, error) {
	return m.listWindowFunc(ctx, userID, goalID, start, end)
}

// ---------------------------------------------------------------------------
// Mock ReflectionLogRepository
// ---------------------------------------------------------------------------

type mockReflectionRepo struct {
	createFunc      func(ctx context.Context, l *domain.ReflectionLog) error
	getByIDFunc     func(ctx context.Context, userID, id uuid.UUID) (*domain.ReflectionLog, error)
	listFunc        func(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, limit int) ([]*domain.ReflectionLog, error)
	markAppliedFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (m *mockReflectionRepo) Create(ctx context.Context, l *domain.ReflectionLog) error {
	return m.createFunc(ctx, l)
}

func (m *mockReflectionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ReflectionLog, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockReflectionRepo) List(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, limit int) ([]*domain.ReflectionLog, error) {
	return m.listFunc(ctx, userID, goalID, limit)
}

func (m *mockReflectionRepo) MarkApplied(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.markAppliedFunc(ctx, id, at)
}

// ---------------------------------------------------------------------------
// Mock ChatAgent
// ---------------------------------------------------------------------------

type mockChatAgent struct {
	chatFunc          func(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (*agent.ChatResult, error)
	confirmPlanFunc   func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Goal, error)
	executeSkillFunc  func(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, name string, params map[string]any) (*agent.SkillResult, uuid.UUID, error)
	invokeToolFunc    func(ctx context.Context, userID uuid.UUID, name string, args map[string]any) (*agent.ToolResult, error)
	listPluginsFunc   func() []agent.PluginInfo
	deleteSessionFunc func(userID, sessionID uuid.UUID)
}

func (m *mockChatAgent) Chat(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (*agent.ChatResult, error) {
	return m.chatFunc(ctx, userID, sessionID, message)
}

func (m *mockChatAgent) ConfirmPlan(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Goal, error) {
	return m.confirmPlanFunc(ctx, userID, sessionID)
}

func (m *mockChatAgent) ExecuteSkill(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, name string, params map[string]any) (*agent.SkillResult, uuid.UUID, error) {
	return m.executeSkillFunc(ctx, userID, sessionID, name, params)
}

func (m *mockChatAgent) InvokeTool(ctx context.Context, userID uuid.UUID, name string, args map[string]any) (*agent.ToolResult, error) {
	return m.invokeToolFunc(ctx, userID, name, args)
}

func (m *mockChatAgent) ListPlugins() []agent.PluginInfo {
	return m.listPluginsFunc()
}

func (m *mockChatAgent) DeleteSession(userID, sessionID uuid.UUID) {
	m.deleteSessionFunc(userID, sessionID)
}

// ---------------------------------------------------------------------------
// Mock ReflectionEngine
// ---------------------------------------------------------------------------

type mockReflectionEngine struct {
	runFunc   func(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error)
	applyFunc func(ctx context.Context, userID, logID uuid.UUID) (*domain.ApplyResult, error)
}

func (m *mockReflectionEngine) Run(ctx context.Context, userID uuid.UUID, goalID *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error) {
	return m.runFunc(ctx, userID, goalID, autoApply)
}

func (m *mockReflectionEngine) Apply(ctx context.Context, userID, logID uuid.UUID) (*domain.ApplyResult, error) {
	return m.applyFunc(ctx, userID, logID)
}
