package character

import (
	"context"
	"log/slog"

	"github.com/dabidoe/character-foundry/internal/clients/llm"
)

const (
	narrativeMaxTokens   = 120
	narrativeTemperature = 0.9
)

// narrate asks the LLM for a short description, falling back to a plain
// sentence when no client is configured or the call fails
func (o *Orchestrator) narrate(ctx context.Context, prompt, fallback string) string {
	if o.llm == nil {
		return fallback
	}

	out, err := o.llm.Complete(ctx, &llm.CompleteInput{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   narrativeMaxTokens,
		Temperature: llm.Float(narrativeTemperature),
	})
	if err != nil || out.Text == "" {
		slog.WarnContext(ctx, "Narrative generation failed, using fallback",
			"error", err,
		)
		return fallback
	}
	return out.Text
}
