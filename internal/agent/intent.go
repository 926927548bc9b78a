package agent

import "strings"

// Classify maps a user message to an intent. Classification is a pure
// function of the message text and the presence of a pending preview, so a
// conversation replays identically in tests. Categories are checked in a
// fixed order; anything unrecognised is chitchat.
func Classify(message string, hasPendingPlan bool) Intent {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return IntentChitchat
	}

	// A bare confirmation while a preview is pending reads as plan intent,
	// not chitchat; the skill tells the user how to confirm.
	if hasPendingPlan && containsAny(m, confirmKeywords) {
		return IntentCreatePlan
	}

	switch {
	case containsAny(m, adjustKeywords):
		return IntentAdjustTasks
	case containsAny(m, queryKeywords):
		return IntentQueryStatus
	case containsAny(m, planKeywords):
		return IntentCreatePlan
	default:
		return IntentChitchat
	}
}

var (
	confirmKeywords = []string{
		"confirm", "yes", "looks good", "go ahead", "do it", "sounds good",
	}
	adjustKeywords = []string{
		"adjust", "reschedule", "postpone", "delay", "falling behind",
		"behind schedule", "too hard", "too much", "reduce", "move my task",
		"rearrange", "replan", "catch up",
	}
	queryKeywords = []string{
		"progress", "status", "how am i doing", "how many", "what's left",
		"what is left", "remaining", "due today", "due tomorrow", "overdue",
		"show my tasks", "list my tasks", "what should i do today",
	}
	planKeywords = []string{
		"plan", "goal", "roadmap", "schedule", "learn", "study", "prepare for",
		"want to start", "help me get", "training",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
