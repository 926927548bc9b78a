package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, true},
		{TaskStatusCompleted, true},
		{TaskStatusSkipped, true},
		{TaskStatus("done"), false},
		{TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestTaskPriorityValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority TaskPriority
		want     bool
	}{
		{TaskPriorityLow, true},
		{TaskPriorityMedium, true},
		{TaskPriorityHigh, true},
		{TaskPriority("urgent"), false},
		{TaskPriority(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.priority.Valid())
		})
	}
}

func TestAdjustmentActionValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action AdjustmentAction
		want   bool
	}{
		{AdjustReschedule, true},
		{AdjustChangePriority, true},
		{AdjustMarkCompleted, true},
		{AdjustMarkSkipped, true},
		{AdjustmentAction("delete"), false},
		{AdjustmentAction(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.action.Valid())
		})
	}
}

func TestCompletionRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{"full day", 5, 5, 1.0},
		{"half day", 2, 4, 0.5},
		{"nothing done", 0, 3, 0.0},
		{"empty day", 0, 0, 0.0},
		{"negative total", 1, -1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := &ExecutionLog{
				TasksCompleted: tt.completed,
				TasksTotal:     tt.total,
				LogDate:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			}
			assert.InDelta(t, tt.want, l.CompletionRatio(), 1e-9)
		})
	}
}

func TestRecommendationSetEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, RecommendationSet{}.Empty())
	assert.False(t, RecommendationSet{GeneralSuggestions: []string{"rest more"}}.Empty())
	assert.False(t, RecommendationSet{NewTasks: []NewTask{{Title: "review"}}}.Empty())
	assert.False(t, RecommendationSet{TaskAdjustments: []TaskAdjustment{{Action: AdjustMarkSkipped}}}.Empty())
}

func TestSentinelWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("postgres.TaskRepository.GetByID: %w", ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)

	wrapped = fmt.Errorf("reflection.Engine.Apply: %w", ErrConflict)
	assert.ErrorIs(t, wrapped, ErrConflict)
}
