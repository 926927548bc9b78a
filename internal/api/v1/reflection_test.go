package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/planweave/planweave/internal/api/v1"
	"github.com/planweave/planweave/internal/domain"
)

// ---------------------------------------------------------------------------
// TestRunReflection
// ---------------------------------------------------------------------------

func TestRunReflection(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	goalID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		logID := uuid.New()
		_, api := humatest.New(t)
		engine := &mockReflectionEngine{
			runFunc: func(_ context.Context, uid uuid.UUID, gid *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error) {
				assert.Equal(t, userID, uid)
				require.NotNil(t, gid)
				assert.Equal(t, goalID, *gid)
				assert.False(t, autoApply)
				return &domain.ReflectionLog{ID: logID, UserID: userID, Analysis: "steady progress"}, nil, nil
			},
		}
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, engine)

		resp := api.PostCtx(userCtx(userID), "/reflection/run", map[string]any{
			"goal_id": goalID.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), logID.String())
		assert.Contains(t, resp.Body.String(), "steady progress")
	})

	t.Run("auto_apply_returns_result", func(t *testing.T) {
		t.Parallel()

		logID := uuid.New()
		_, api := humatest.New(t)
		engine := &mockReflectionEngine{
			runFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, autoApply bool) (*domain.ReflectionLog, *domain.ApplyResult, error) {
				assert.True(t, autoApply)
				return &domain.ReflectionLog{ID: logID, IsApplied: true},
					&domain.ApplyResult{LogID: logID, Adjusted: 2, Created: 1}, nil
			},
		}
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, engine)

		resp := api.PostCtx(userCtx(userID), "/reflection/run", map[string]any{
			"auto_apply": true,
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Log         *domain.ReflectionLog `json:"log"`
			ApplyResult *domain.ApplyResult   `json:"apply_result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.ApplyResult)
		assert.Equal(t, 2, body.ApplyResult.Adjusted)
		assert.Equal(t, 1, body.ApplyResult.Created)
		assert.True(t, body.Log.IsApplied)
	})

	t.Run("missing_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, &mockReflectionEngine{})

		resp := api.PostCtx(context.Background(), "/reflection/run", map[string]any{})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestApplyReflection
// ---------------------------------------------------------------------------

func TestApplyReflection(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	logID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		engine := &mockReflectionEngine{
			applyFunc: func(_ context.Context, uid, lid uuid.UUID) (*domain.ApplyResult, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, logID, lid)
				return &domain.ApplyResult{LogID: logID, Adjusted: 3, Skipped: 1}, nil
			},
		}
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, engine)

		resp := api.PostCtx(userCtx(userID), "/reflection/logs/"+logID.String()+"/apply")

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.ApplyResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 3, body.Adjusted)
		assert.Equal(t, 1, body.Skipped)
	})

	t.Run("already_applied", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		engine := &mockReflectionEngine{
			applyFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.ApplyResult, error) {
				return nil, domain.ErrConflict
			},
		}
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, engine)

		resp := api.PostCtx(userCtx(userID), "/reflection/logs/"+logID.String()+"/apply")

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		engine := &mockReflectionEngine{
			applyFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.ApplyResult, error) {
				return nil, domain.ErrNotFound
			},
		}
		v1.RegisterReflectionRoutes(api, &mockDataStore{reflections: &mockReflectionRepo{}}, engine)

		resp := api.PostCtx(userCtx(userID), "/reflection/logs/"+uuid.New().String()+"/apply")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestListReflectionLogs / TestGetReflectionLog
// ---------------------------------------------------------------------------

func TestListReflectionLogs(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	goalID := uuid.New()

	_, api := humatest.New(t)
	store := &mockDataStore{
		reflections: &mockReflectionRepo{
			listFunc: func(_ context.Context, uid uuid.UUID, gid *uuid.UUID, limit int) ([]*domain.ReflectionLog, error) {
				assert.Equal(t, userID, uid)
				require.NotNil(t, gid)
				assert.Equal(t, goalID, *gid)
				assert.Equal(t, 5, limit)
				return []*domain.ReflectionLog{{ID: uuid.New(), UserID: userID}}, nil
			},
		},
	}
	v1.RegisterReflectionRoutes(api, store, &mockReflectionEngine{})

	resp := api.GetCtx(userCtx(userID), "/reflection/logs?goal_id="+goalID.String()+"&limit=5")

	require.Equal(t, http.StatusOK, resp.Code)

	var body []domain.ReflectionLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 1)
}

func TestGetReflectionLog(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	logID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			reflections: &mockReflectionRepo{
				getByIDFunc: func(_ context.Context, uid, id uuid.UUID) (*domain.ReflectionLog, error) {
					assert.Equal(t, userID, uid)
					assert.Equal(t, logID, id)
					return &domain.ReflectionLog{ID: logID, UserID: userID, Degraded: true}, nil
				},
			},
		}
		v1.RegisterReflectionRoutes(api, store, &mockReflectionEngine{})

		resp := api.GetCtx(userCtx(userID), "/reflection/logs/"+logID.String())

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.ReflectionLog
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, logID, body.ID)
		assert.True(t, body.Degraded)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			reflections: &mockReflectionRepo{
				getByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.ReflectionLog, error) {
					return nil, domain.ErrNotFound
				},
			},
		}
		v1.RegisterReflectionRoutes(api, store, &mockReflectionEngine{})

		resp := api.GetCtx(userCtx(userID), "/reflection/logs/"+uuid.New().String())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
