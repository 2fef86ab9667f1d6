package llm

import (
	"context"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dabidoe/character-foundry/internal/errors"
)

type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropic(cfg *Config) *anthropicClient {
	opts := []aoption.RequestOption{
		aoption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		aoption.WithMaxRetries(0),
		aoption.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, aoption.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	return &anthropicClient{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	messages := make([]anthropic.MessageParam, 0, len(input.Messages))
	for _, msg := range input.Messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: input.maxTokens(),
		Messages:  messages,
	}
	if system := strings.TrimSpace(input.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if input.Temperature != nil {
		params.Temperature = anthropic.Float(*input.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		slog.ErrorContext(ctx, "anthropic message failed", "model", c.model, "error", err)
		return nil, errors.External(err, "failed to generate response")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return nil, errors.External(nil, "model returned an empty response")
	}

	return &CompleteOutput{Text: out, Model: string(msg.Model)}, nil
}
