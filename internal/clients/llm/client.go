// Package llm wraps the chat completion providers used for character
// conversation, generation and narratives.
package llm

//go:generate mockgen -destination=mock/mock_client.go -package=llmmock github.com/dabidoe/character-foundry/internal/clients/llm Client

import (
	"context"
	"strings"
	"time"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// Supported providers
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Defaults per provider
const (
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	DefaultMaxTokens = 1024
	DefaultTimeout   = 60 * time.Second
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn sent to the model
type Message struct {
	Role    string
	Content string
}

// CompleteInput is a single completion request
type CompleteInput struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// CompleteOutput holds the trimmed model reply
type CompleteOutput struct {
	Text  string
	Model string
}

// Client produces one completion per call. It does not retry.
type Client interface {
	Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error)
}

// Config selects and configures a provider
type Config struct {
	Provider string
	APIKey   string
	// BaseURL overrides the provider endpoint; Gemini defaults to its
	// OpenAI-compatible endpoint
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	errors.ValidateEnum("provider", c.Provider, []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}, vb)
	errors.ValidateRequired("api_key", c.APIKey, vb)

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	switch c.Provider {
	case ProviderGemini:
		if c.BaseURL == "" {
			c.BaseURL = GeminiBaseURL
		}
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
	case ProviderAnthropic:
		if c.Model == "" {
			c.Model = DefaultAnthropicModel
		}
	}

	return vb.Build()
}

// New returns the client for cfg.Provider
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Provider == ProviderAnthropic {
		return newAnthropic(cfg), nil
	}
	return newOpenAI(cfg), nil
}

func (in *CompleteInput) validate() error {
	if in == nil {
		return errors.InvalidArgument("input is required")
	}
	if len(in.Messages) == 0 {
		return errors.InvalidArgument("at least one message is required")
	}
	return nil
}

func (in *CompleteInput) maxTokens() int64 {
	if in.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return int64(in.MaxTokens)
}

// Float is a helper for CompleteInput.Temperature
func Float(v float64) *float64 {
	return &v
}
