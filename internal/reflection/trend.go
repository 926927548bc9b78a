package reflection

import (
	"fmt"
	"strings"

	"github.com/planweave/planweave/internal/domain"
)

// Trend classifies the direction of a completion-ratio series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Stats is the deterministic half of a reflection: everything here is
// computed from the log window alone, with no model involved.
type Stats struct {
	Days              int      `json:"days"`
	AverageCompletion float64  `json:"average_completion"`
	Trend             Trend    `json:"trend"`
	KeyIssues         []string `json:"key_issues"`
}

// ComputeTrend compares the average completion of the most recent third of
// the series against the earliest third. Differences within epsilon count as
// stable. Ratios must be ordered oldest first.
func ComputeTrend(ratios []float64, epsilon float64) Trend {
	if len(ratios) < 2 {
		return TrendStable
	}

	third := len(ratios) / 3
	if third < 1 {
		third = 1
	}

	earliest := mean(ratios[:third])
	recent := mean(ratios[len(ratios)-third:])

	diff := recent - earliest
	switch {
	case diff > epsilon:
		return TrendImproving
	case diff < -epsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Analyze derives stats and key issues from an execution-log window. Issues
// flagged: a run of consecutiveLowDays days below lowCompletion, and
// difficulties text repeated on two or more days.
func Analyze(logs []*domain.ExecutionLog, lowCompletion, trendEpsilon float64, consecutiveLowDays int) Stats {
	stats := Stats{Days: len(logs)}
	if len(logs) == 0 {
		stats.Trend = TrendStable
		return stats
	}

	ratios := make([]float64, len(logs))
	for i, l := range logs {
		ratios[i] = l.CompletionRatio()
	}

	stats.AverageCompletion = mean(ratios)
	stats.Trend = ComputeTrend(ratios, trendEpsilon)

	if run := longestLowRun(ratios, lowCompletion); run >= consecutiveLowDays {
		stats.KeyIssues = append(stats.KeyIssues,
			fmt.Sprintf("%d consecutive days with completion below %.0f%%", run, lowCompletion*100))
	}

	if n := daysWithDifficulties(logs); n >= 2 {
		stats.KeyIssues = append(stats.KeyIssues,
			fmt.Sprintf("difficulties reported on %d of %d days", n, len(logs)))
	}

	return stats
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func longestLowRun(ratios []float64, threshold float64) int {
	longest, run := 0, 0
	for _, r := range ratios {
		if r < threshold {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func daysWithDifficulties(logs []*domain.ExecutionLog) int {
	n := 0
	for _, l := range logs {
		if strings.TrimSpace(l.Difficulties) != "" {
			n++
		}
	}
	return n
}
