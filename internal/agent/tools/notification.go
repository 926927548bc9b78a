// Package tools holds the agent's side-effecting tools. Tools run under the
// tool registry's sandbox: bounded by a timeout, never retried by the
// registry.
package tools

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/notify"
)

// SendNotification delivers a message through the notification dispatcher.
type SendNotification struct {
	notifier        *notify.Notifier
	defaultPlatform string
}

func NewSendNotification(notifier *notify.Notifier, defaultPlatform string) *SendNotification {
	return &SendNotification{notifier: notifier, defaultPlatform: defaultPlatform}
}

func (t *SendNotification) Name() string { return "send_notification" }

func (t *SendNotification) Description() string {
	return "Send a notification message to the user through a messenger platform."
}

func (t *SendNotification) Invoke(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	message, _ := args["message"].(string)
	if message == "" {
		return nil, fmt.Errorf("tools.SendNotification.Invoke: message is required: %w", domain.ErrValidation)
	}

	platform, _ := args["platform"].(string)
	if platform == "" {
		platform = t.defaultPlatform
	}

	// The recipient is never taken from the arguments: delivery always goes
	// to the messenger's configured channel, whatever the caller asks for.
	err := t.notifier.Notify(ctx, platform, "", message)
	if err != nil {
		return nil, fmt.Errorf("tools.SendNotification.Invoke: %w", err)
	}

	return &agent.ToolResult{Output: map[string]any{"delivered": true}}, nil
}
