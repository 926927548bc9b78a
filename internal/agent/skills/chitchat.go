package skills

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/llm"
)

// Chitchat handles everything that is not a planning request. It never
// mutates persisted state, whatever the input text.
type Chitchat struct {
	llm llm.Gateway
}

func NewChitchat(gateway llm.Gateway) *Chitchat {
	return &Chitchat{llm: gateway}
}

func (s *Chitchat) Name() string { return "chitchat" }

func (s *Chitchat) Description() string {
	return "Friendly conversational replies for messages outside the planning domain."
}

const chitchatSystemPrompt = "You are a friendly planning assistant. Keep replies short. If the user seems to want a plan, progress report, or adjustment, suggest asking for one."

const chitchatFallback = "Hi! I can draft plans for your goals, report progress, and adjust tasks when life gets in the way. What would you like to do?"

func (s *Chitchat) Execute(ctx context.Context, req *agent.SkillRequest) (*agent.SkillResult, error) {
	system := chitchatSystemPrompt
	if title, ok := req.Session.Memory(memGoalTitle); ok {
		system += " The user is currently working toward: " + strconv.Quote(title) + "."
	}

	reply, err := s.llm.Complete(ctx, system, req.Message)
	if err != nil {
		log.Debug().Err(err).Msg("chitchat model unavailable, using canned reply")
		reply = chitchatFallback
	}

	return &agent.SkillResult{Reply: reply}, nil
}
