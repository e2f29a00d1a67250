// Package ai drafts scenarios from a page map and a plain-language request.
package ai

import (
	"context"
	"fmt"
)

// Provider sends one system+user exchange to a model and returns its text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Settings selects and authenticates a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // empty uses the vendor endpoint
}

// NewProvider creates a provider by name.
func NewProvider(s Settings) (Provider, error) {
	switch s.Provider {
	case "claude", "anthropic", "":
		return NewClaudeProvider(s)
	case "openai", "gpt":
		return NewOpenAIProvider(s)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", s.Provider)
	}
}

const maxTokens = 2048
