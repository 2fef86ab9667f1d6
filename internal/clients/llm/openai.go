package llm

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// openAIClient talks to any OpenAI-compatible chat completions endpoint,
// including Gemini's
type openAIClient struct {
	client   openai.Client
	model    string
	provider string
}

func newOpenAI(cfg *Config) *openAIClient {
	opts := []ooption.RequestOption{
		ooption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		ooption.WithMaxRetries(0),
		ooption.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ooption.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	return &openAIClient{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

func (c *openAIClient) Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(input.Messages)+1)
	if system := strings.TrimSpace(input.System); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range input.Messages {
		if msg.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(msg.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(msg.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  messages,
		MaxTokens: openai.Int(input.maxTokens()),
	}
	if input.Temperature != nil {
		params.Temperature = openai.Float(*input.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.ErrorContext(ctx, "chat completion failed", "provider", c.provider, "model", c.model, "error", err)
		return nil, errors.External(err, "failed to generate response")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.External(nil, "model returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.External(nil, "model returned an empty response")
	}

	return &CompleteOutput{Text: text, Model: resp.Model}, nil
}
