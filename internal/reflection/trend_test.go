package reflection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/planweave/planweave/internal/domain"
)

func TestComputeTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ratios  []float64
		epsilon float64
		want    Trend
	}{
		{"empty", nil, 0.05, TrendStable},
		{"single day", []float64{0.5}, 0.05, TrendStable},
		{"improving", []float64{0.2, 0.4, 0.5, 0.6, 0.7, 0.9}, 0.05, TrendImproving},
		{"declining", []float64{0.9, 0.8, 0.6, 0.5, 0.3, 0.2}, 0.05, TrendDeclining},
		{"flat", []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 0.05, TrendStable},
		{"within epsilon", []float64{0.50, 0.52, 0.53}, 0.05, TrendStable},
		{"two days declining", []float64{0.8, 0.2}, 0.05, TrendDeclining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeTrend(tt.ratios, tt.epsilon))
		})
	}
}

func dayLog(day int, completed, total int, difficulties string) *domain.ExecutionLog {
	return &domain.ExecutionLog{
		LogDate:        time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		TasksCompleted: completed,
		TasksTotal:     total,
		Difficulties:   difficulties,
	}
}

func TestAnalyzeDecliningWithLowRun(t *testing.T) {
	t.Parallel()

	logs := []*domain.ExecutionLog{
		dayLog(1, 8, 10, ""),
		dayLog(2, 6, 10, ""),
		dayLog(3, 5, 10, ""),
		dayLog(4, 2, 10, ""),
		dayLog(5, 1, 10, ""),
		dayLog(6, 0, 10, ""),
	}

	stats := Analyze(logs, 0.3, 0.05, 3)

	assert.Equal(t, TrendDeclining, stats.Trend)
	assert.NotEmpty(t, stats.KeyIssues, "three low days must surface a key issue")
}

func TestAnalyzeRepeatedDifficulties(t *testing.T) {
	t.Parallel()

	logs := []*domain.ExecutionLog{
		dayLog(1, 8, 10, "meetings ran long"),
		dayLog(2, 7, 10, ""),
		dayLog(3, 8, 10, "meetings ran long"),
	}

	stats := Analyze(logs, 0.3, 0.05, 3)

	assert.Equal(t, TrendStable, stats.Trend)
	assert.Len(t, stats.KeyIssues, 1)
}

func TestAnalyzeHealthyWindow(t *testing.T) {
	t.Parallel()

	logs := []*domain.ExecutionLog{
		dayLog(1, 9, 10, ""),
		dayLog(2, 8, 10, ""),
		dayLog(3, 9, 10, ""),
	}

	stats := Analyze(logs, 0.3, 0.05, 3)

	assert.Empty(t, stats.KeyIssues)
	assert.InDelta(t, 0.866, stats.AverageCompletion, 0.01)
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	t.Parallel()

	stats := Analyze(nil, 0.3, 0.05, 3)

	assert.Zero(t, stats.Days)
	assert.Equal(t, TrendStable, stats.Trend)
	assert.Empty(t, stats.KeyIssues)
}

func TestLongestLowRunResets(t *testing.T) {
	t.Parallel()

	// Low runs separated by a good day do not accumulate.
	ratios := []float64{0.1, 0.2, 0.8, 0.1, 0.2}
	assert.Equal(t, 2, longestLowRun(ratios, 0.3))
}
