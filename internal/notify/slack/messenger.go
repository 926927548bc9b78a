package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/planweave/planweave/internal/notify"
)

// SlackAPI abstracts the subset of the Slack client used by Messenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Messenger implements notify.Messenger for Slack.
type Messenger struct {
	api            SlackAPI
	defaultChannel string
}

var _ notify.Messenger = (*Messenger)(nil)

// New creates a Messenger. defaultChannel receives notifications whose
// recipient is empty.
func New(api SlackAPI, defaultChannel string) *Messenger {
	return &Messenger{api: api, defaultChannel: defaultChannel}
}

// NewFromToken creates a Messenger backed by the real Slack client.
func NewFromToken(botToken, defaultChannel string) *Messenger {
	return New(slacklib.New(botToken), defaultChannel)
}

// SendNotification posts a text message to the recipient channel or user.
func (m *Messenger) SendNotification(_ context.Context, recipient, text string) error {
	if recipient == "" {
		recipient = m.defaultChannel
	}
	if recipient == "" {
		return fmt.Errorf("slack.Messenger.SendNotification: no recipient and no default channel")
	}

	_, _, err := m.api.PostMessage(recipient, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack.Messenger.SendNotification: %w", err)
	}

	return nil
}

// Platform returns the messenger platform identifier.
func (m *Messenger) Platform() string {
	return "slack"
}
