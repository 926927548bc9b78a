// Package notify dispatches user-facing notifications through pluggable
// messenger platforms.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrPlatformNotFound is returned when a messenger platform is not registered.
var ErrPlatformNotFound = errors.New("notify: platform not found")

// Messenger abstracts one chat platform. Implementations handle the
// platform-specific API; recipient is the platform's own id (a Slack channel
// or user id, for example).
type Messenger interface {
	SendNotification(ctx context.Context, recipient, text string) error
	Platform() string
}

// Registry is a simple map-based platform registry.
type Registry struct {
	messengers map[string]Messenger
}

func NewRegistry() *Registry {
	return &Registry{
		messengers: make(map[string]Messenger),
	}
}

// Register adds a messenger under its own platform name.
func (r *Registry) Register(m Messenger) {
	r.messengers[m.Platform()] = m
}

// Get returns the messenger for the given platform, or false if not registered.
func (r *Registry) Get(platform string) (Messenger, bool) {
	m, ok := r.messengers[platform]
	return m, ok
}

// Notifier dispatches notifications to a platform recipient. A deployment
// with no configured platforms degrades to logging so callers never fail on
// a missing integration.
type Notifier struct {
	messengers *Registry
}

func New(messengers *Registry) *Notifier {
	return &Notifier{messengers: messengers}
}

// Notify sends a message via the named platform. An empty platform name logs
// the message and succeeds; an unknown platform is an error.
func (n *Notifier) Notify(ctx context.Context, platform, recipient, message string) error {
	if platform == "" {
		log.Info().Str("recipient", recipient).Str("message", message).
			Msg("no notification platform configured, logging instead")
		return nil
	}

	m, ok := n.messengers.Get(platform)
	if !ok {
		return fmt.Errorf("notify.Notifier.Notify: platform %q: %w", platform, ErrPlatformNotFound)
	}

	if err := m.SendNotification(ctx, recipient, message); err != nil {
		return fmt.Errorf("notify.Notifier.Notify: send: %w", err)
	}

	return nil
}
