package agent

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/domain"
)

// SkillRegistry manages the skills the agent can route to.
type SkillRegistry struct {
	mu     sync.RWMutex
	skills map[string]Skill
}

func NewSkillRegistry() *SkillRegistry {
	return &SkillRegistry{
		skills: make(map[string]Skill),
	}
}

// Register adds a skill under its own name.
func (r *SkillRegistry) Register(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[s.Name()] = s
}

// Get returns the named skill.
func (r *SkillRegistry) Get(name string) (Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.skills[name]
	if !ok {
		return nil, fmt.Errorf("agent.SkillRegistry.Get(%q): %w", name, domain.ErrSkillNotFound)
	}

	return s, nil
}

// List returns registered skills in name order.
func (r *SkillRegistry) List() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := slices.Collect(func(yield func(string) bool) {
		for name := range r.skills {
			if !yield(name) {
				return
			}
		}
	})
	sort.Strings(names)

	out := make([]Skill, 0, len(names))
	for _, n := range names {
		out = append(out, r.skills[n])
	}

	return out
}

// ToolRegistry manages tools and sandboxes their invocation: every call gets
// a deadline and a panic guard, so a misbehaving tool degrades one request
// instead of the process. Failed invocations are not retried.
type ToolRegistry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	timeout time.Duration
}

func NewToolRegistry(timeout time.Duration) *ToolRegistry {
	return &ToolRegistry{
		tools:   make(map[string]Tool),
		timeout: timeout,
	}
}

// Register adds a tool under its own name.
func (r *ToolRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// List returns registered tools in name order.
func (r *ToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := slices.Collect(func(yield func(string) bool) {
		for name := range r.tools {
			if !yield(name) {
				return
			}
		}
	})
	sort.Strings(names)

	out := make([]Tool, 0, len(names))
	for _, n := range names {
		out = append(out, r.tools[n])
	}

	return out
}

// Invoke runs the named tool under the registry's sandbox. An unknown name
// is the only error at the call site; timeouts, panics, and tool failures
// come back as a result with OK false so the calling skill can degrade the
// reply instead of aborting the turn.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("agent.ToolRegistry.Invoke(%q): %w", name, domain.ErrToolNotFound)
	}

	start := time.Now()
	res, err := r.run(ctx, t, args)

	out := &ToolResult{Tool: name, Duration: time.Since(start)}
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Dur("duration", out.Duration).Msg("tool invocation failed")
		out.Err = err.Error()
		return out, nil
	}

	out.OK = true
	if res != nil {
		out.Output = res.Output
	}

	return out, nil
}

// run executes one tool call under the deadline and panic guard.
func (r *ToolRegistry) run(ctx context.Context, t Tool, args map[string]any) (res *ToolResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	return t.Invoke(ctx, args)
}
