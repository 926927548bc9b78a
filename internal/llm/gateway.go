// Package llm wraps the language-model endpoint behind a small gateway
// interface so the agent and reflection engine never import the SDK
// directly.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Gateway is the completion surface the rest of the codebase consumes.
type Gateway interface {
	// Complete returns the model's free-text reply.
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteJSON asks for a JSON object reply and unmarshals it into out.
	CompleteJSON(ctx context.Context, system, user string, out any) error
}

// Client talks to any OpenAI-compatible chat-completions endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	content, err := c.complete(ctx, system, user, nil)
	if err != nil {
		return "", fmt.Errorf("llm.Client.Complete: %w", err)
	}
	return content, nil
}

func (c *Client) CompleteJSON(ctx context.Context, system, user string, out any) error {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	content, err := c.complete(ctx, system, user, format)
	if err != nil {
		return fmt.Errorf("llm.Client.CompleteJSON: %w", err)
	}

	// Some models wrap JSON in a fenced block even in JSON mode.
	content = stripFence(content)

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("llm.Client.CompleteJSON: decode reply: %w", err)
	}

	return nil
}

func (c *Client) complete(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.model,
		Temperature:    c.temperature,
		Messages:       messages,
		ResponseFormat: format,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	return resp.Choices[0].Message.Content, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
