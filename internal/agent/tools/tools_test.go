package tools_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/agent/tools"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/notify"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeTaskRepo struct {
	listFunc func(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
}

func (f *fakeTaskRepo) Create(context.Context, *domain.Task) error { return nil }
func (f *fakeTaskRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeTaskRepo) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return f.listFunc(ctx, userID, filter)
}
func (f *fakeTaskRepo) Update(context.Context, *domain.Task) error { return nil }
func (f *fakeTaskRepo) ConditionalUpdate(context.Context, *domain.Task, int) error {
	return nil
}
func (f *fakeTaskRepo) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, domain.TaskStatus) error {
	return nil
}
func (f *fakeTaskRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeGoalRepo struct {
	listFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Goal, error)
}

func (f *fakeGoalRepo) Create(context.Context, *domain.Goal) error { return nil }
func (f *fakeGoalRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.Goal, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeGoalRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Goal, error) {
	return f.listFunc(ctx, userID, limit)
}
func (f *fakeGoalRepo) Update(context.Context, *domain.Goal) error { return nil }
func (f *fakeGoalRepo) UpdateProgress(context.Context, uuid.UUID, uuid.UUID, float64) error {
	return nil
}

type fakeMessenger struct {
	recipient string
	text      string
}

func (f *fakeMessenger) SendNotification(_ context.Context, recipient, text string) error {
	f.recipient = recipient
	f.text = text
	return nil
}

func (f *fakeMessenger) Platform() string { return "slack" }

// ---------------------------------------------------------------------------
// TestDBQuery
// ---------------------------------------------------------------------------

func TestDBQueryScopesByUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	var queried uuid.UUID
	repo := &fakeTaskRepo{
		listFunc: func(_ context.Context, uid uuid.UUID, _ domain.TaskFilter) ([]*domain.Task, error) {
			queried = uid
			return []*domain.Task{{ID: uuid.New(), UserID: uid, Title: "read"}}, nil
		},
	}

	tool := tools.NewDBQuery(repo, &fakeGoalRepo{})

	res, err := tool.Invoke(context.Background(), map[string]any{
		"entity":  "tasks",
		"user_id": userID.String(),
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Output)
	assert.Equal(t, userID, queried, "the repo only sees the user_id argument")
}

func TestDBQueryRequiresUserID(t *testing.T) {
	t.Parallel()

	tool := tools.NewDBQuery(&fakeTaskRepo{}, &fakeGoalRepo{})

	_, err := tool.Invoke(context.Background(), map[string]any{"entity": "tasks"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tool.Invoke(context.Background(), map[string]any{
		"entity":  "tasks",
		"user_id": "not-a-uuid",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---------------------------------------------------------------------------
// TestSendNotification
// ---------------------------------------------------------------------------

func TestSendNotificationIgnoresCallerRecipient(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	registry := notify.NewRegistry()
	registry.Register(messenger)

	tool := tools.NewSendNotification(notify.New(registry), "slack")

	res, err := tool.Invoke(context.Background(), map[string]any{
		"message":   "standup in 5",
		"recipient": "C0EVERYONE",
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Output)
	assert.Equal(t, "standup in 5", messenger.text)
	assert.Empty(t, messenger.recipient, "delivery target comes from configuration, not the caller")
}

func TestSendNotificationRequiresMessage(t *testing.T) {
	t.Parallel()

	tool := tools.NewSendNotification(notify.New(notify.NewRegistry()), "")

	_, err := tool.Invoke(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
