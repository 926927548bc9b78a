// Package skills holds the agent's skill implementations. Skills produce
// replies and previews only; the write paths live in the agent's confirm
// flow and the reflection engine.
package skills

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/llm"
	"github.com/planweave/planweave/internal/session"
)

// GeneratePlan turns a goal description into a plan preview. It never
// touches the database: the preview lives in the session until the user
// confirms it.
type GeneratePlan struct {
	llm llm.Gateway
	now func() time.Time
}

func NewGeneratePlan(gateway llm.Gateway) *GeneratePlan {
	return &GeneratePlan{llm: gateway, now: time.Now}
}

func (s *GeneratePlan) Name() string { return "generate_plan" }

func (s *GeneratePlan) Description() string {
	return "Generate a plan with an outline and initial tasks from the user's goal, presented as a preview for confirmation."
}

const planSystemPrompt = "You are an expert planning assistant. Generate structured, actionable plans in JSON format."

// Session memory keys. Collected goal details survive a failed generation
// attempt; the confirmed title lets later turns refer to the current goal.
const (
	memPlanTopic = "plan_topic"
	memGoalTitle = "goal_title"
)

type planReply struct {
	GoalTitle       string `json:"goal_title"`
	GoalDescription string `json:"goal_description"`
	DurationWeeks   int    `json:"duration_weeks"`
	Phases          []struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		DurationWeeks int      `json:"duration_weeks"`
		Milestones    []string `json:"milestones"`
	} `json:"phases"`
	Tasks []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DaysFromNow int    `json:"days_from_now"`
		DueTime     string `json:"due_time"`
		Priority    string `json:"priority"`
		DependsOn   []int  `json:"depends_on"`
	} `json:"tasks"`
	Recommendations []string `json:"recommendations"`
}

func (s *GeneratePlan) Execute(ctx context.Context, req *agent.SkillRequest) (*agent.SkillResult, error) {
	prompt := s.buildPrompt(req)

	var reply planReply
	err := s.llm.CompleteJSON(ctx, planSystemPrompt, prompt, &reply)
	if err != nil {
		log.Warn().Err(err).Msg("plan generation degraded, model unavailable")
		req.Session.SetMemory(req.MemoryCap, memPlanTopic, req.Message)
		return &agent.SkillResult{
			Reply: "I couldn't reach the planning model just now. Please try again in a moment.",
		}, nil
	}

	if reply.GoalTitle == "" || len(reply.Tasks) == 0 {
		req.Session.SetMemory(req.MemoryCap, memPlanTopic, req.Message)
		return &agent.SkillResult{
			Reply: "I couldn't work out a concrete plan from that. Could you describe the goal and a rough timeframe?",
		}, nil
	}

	preview := s.toPreview(&reply)
	req.Session.SetMemory(req.MemoryCap, memGoalTitle, preview.GoalTitle)

	return &agent.SkillResult{
		Reply:   s.describePreview(preview),
		Preview: preview,
	}, nil
}

func (s *GeneratePlan) buildPrompt(req *agent.SkillRequest) string {
	var b strings.Builder

	b.WriteString("Based on the following conversation, generate a plan.\n\n")

	history := req.Session.History()
	if len(history) > 1 {
		b.WriteString("## Recent conversation:\n")
		// The last few turns carry the goal and its refinements.
		start := max(0, len(history)-6)
		for _, m := range history[start:] {
			b.WriteString(string(m.Role) + ": " + m.Content + "\n")
		}
		b.WriteString("\n")
	}

	if topic, ok := req.Session.Memory(memPlanTopic); ok && topic != req.Message {
		b.WriteString("## Goal details collected earlier:\n" + topic + "\n\n")
	}

	b.WriteString("## Request:\n" + req.Message + "\n\n")

	if extra, ok := req.Params["additional_context"].(string); ok && extra != "" {
		b.WriteString("## Additional context:\n" + extra + "\n\n")
	}

	b.WriteString(`Return a JSON object with this structure:
{
  "goal_title": "<short goal title>",
  "goal_description": "<one paragraph>",
  "duration_weeks": <number>,
  "phases": [
    {"title": "<phase>", "description": "<text>", "duration_weeks": <number>, "milestones": ["<m1>"]}
  ],
  "tasks": [
    {"title": "<task>", "description": "<text>", "days_from_now": <number>, "due_time": "<HH:MM or empty>", "priority": "low|medium|high", "depends_on": [<indices of earlier tasks in this list>]}
  ],
  "recommendations": ["<tip1>", "<tip2>"]
}`)

	return b.String()
}

func (s *GeneratePlan) toPreview(reply *planReply) *session.PlanPreview {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weeks := reply.DurationWeeks
	if weeks < 1 {
		weeks = 4
	}

	preview := &session.PlanPreview{
		GoalTitle:       reply.GoalTitle,
		GoalDescription: reply.GoalDescription,
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, weeks*7),
		Suggestions:     reply.Recommendations,
		CreatedAt:       now,
	}

	for _, p := range reply.Phases {
		preview.Outline = append(preview.Outline, domain.PhaseOutline{
			Title:         p.Title,
			Description:   p.Description,
			DurationWeeks: p.DurationWeeks,
			Milestones:    p.Milestones,
		})
	}

	for i, t := range reply.Tasks {
		priority := domain.TaskPriority(t.Priority)
		if !priority.Valid() {
			priority = domain.TaskPriorityMedium
		}

		// Only references to earlier entries survive; forward and
		// self references cannot resolve to a created task.
		var deps []int
		for _, d := range t.DependsOn {
			if d >= 0 && d < i {
				deps = append(deps, d)
			}
		}

		preview.Tasks = append(preview.Tasks, session.PlannedTask{
			Title:          t.Title,
			Description:    t.Description,
			DayOffset:      max(t.DaysFromNow, 0),
			DueTime:        t.DueTime,
			Priority:       priority,
			DependsOnIndex: deps,
		})
	}

	return preview
}

func (s *GeneratePlan) describePreview(p *session.PlanPreview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here's a draft plan for %q (%s to %s), %d tasks",
		p.GoalTitle,
		p.StartDate.Format("2006-01-02"),
		p.EndDate.Format("2006-01-02"),
		len(p.Tasks),
	)
	if len(p.Outline) > 0 {
		fmt.Fprintf(&b, " across %d phases", len(p.Outline))
	}
	b.WriteString(":\n")

	for i, t := range p.Tasks {
		if i >= 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(p.Tasks)-i)
			break
		}
		fmt.Fprintf(&b, "  %d. %s (day %d, %s)\n", i+1, t.Title, t.DayOffset, t.Priority)
	}

	b.WriteString("Reply \"confirm\" or call confirm-plan to create it.")

	return b.String()
}
