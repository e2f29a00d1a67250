package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider talks to Anthropic's Messages API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

// NewClaudeProvider needs an API key.
func NewClaudeProvider(s Settings) (*ClaudeProvider, error) {
	if s.APIKey == "" {
		return nil, errors.New("SHOPCHECK_ANTHROPIC_KEY or ANTHROPIC_API_KEY environment variable required")
	}
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	model := s.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	return &ClaudeProvider{client: &client, model: model}, nil
}

func (p *ClaudeProvider) Name() string { return "claude" }

// Complete returns the first text block of the reply.
func (p *ClaudeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("empty response from Claude")
}
