// Package conversation implements in-character chat and prompt-driven
// character generation
package conversation

//go:generate mockgen -destination=mock/mock_service.go -package=conversationmock github.com/dabidoe/character-foundry/internal/orchestrators/conversation Service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dabidoe/character-foundry/internal/clients/llm"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	"github.com/dabidoe/character-foundry/internal/rules"
)

const (
	// HistoryContext is how many stored messages are sent with a chat
	HistoryContext = 5
	// MaxStoredHistory caps the conversation kept on the document
	MaxStoredHistory = 50
	// MinPromptLength is the shortest accepted generation prompt
	MinPromptLength = 10

	chatMaxTokens       = 300
	chatTemperature     = 0.8
	generateMaxTokens   = 2048
	generateTemperature = 0.9
)

// Service defines the conversation operations
type Service interface {
	Chat(ctx context.Context, input *ChatInput) (*ChatOutput, error)
	GenerateCharacter(ctx context.Context, input *GenerateCharacterInput) (*GenerateCharacterOutput, error)
}

// Config holds the dependencies for the conversation orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	IDGenerator   idgen.Generator

	// LLM is optional; both operations answer Unavailable without it
	LLM llm.Client
	// Portraits is optional; generated characters skip the portrait
	// without it
	Portraits portrait.Service
	Clock     clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	characterRepo characterrepo.Repository
	idGen         idgen.Generator
	llm           llm.Client
	portraits     portrait.Service
	clock         clock.Clock
}

// New creates a conversation orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		idGen:         cfg.IDGenerator,
		llm:           cfg.LLM,
		portraits:     cfg.Portraits,
		clock:         clk,
	}, nil
}

var _ Service = (*Orchestrator)(nil)

func (o *Orchestrator) requireLLM() error {
	if o.llm == nil {
		return errors.Unavailable("AI service not available")
	}
	return nil
}

// chatSystemPrompt puts the model in character
func chatSystemPrompt(c *entities.Character, mood entities.Mood) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a character in a D&D-style RPG.\n\n", c.Name)
	fmt.Fprintf(&b, "CHARACTER BACKGROUND:\n%s\n%s\n\n", c.Background, c.Personality)
	fmt.Fprintf(&b, "CURRENT MOOD: %s\n%s\n\n", mood, mood.Prompt())
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("- Stay in character at all times\n")
	fmt.Fprintf(&b, "- Respond naturally as %s would\n", c.Name)
	b.WriteString("- Keep responses concise (2-4 sentences max)\n")
	b.WriteString("- Use appropriate emotion based on mood\n")
	b.WriteString("- Reference past conversation when relevant\n")
	b.WriteString("- Never break character or mention being an AI")

	history := c.ConversationHistory
	if len(history) > HistoryContext {
		history = history[len(history)-HistoryContext:]
	}
	if len(history) > 0 {
		b.WriteString("\n\nPREVIOUS CONVERSATION:\n")
		for _, msg := range history {
			speaker := c.Name
			if msg.Role == entities.RoleUser {
				speaker = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Content)
		}
	}

	return b.String()
}

// Chat sends a message to the character and stores both sides of the turn
func (o *Orchestrator) Chat(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.InvalidArgument("Message is required")
	}
	mood, ok := entities.ParseMood(input.Mood)
	if !ok {
		return nil, errors.InvalidArgumentf("unknown mood: %s", input.Mood)
	}
	if err := o.requireLLM(); err != nil {
		return nil, err
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "Character not found")
		}
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}
	c := got.Character

	reply, err := o.llm.Complete(ctx, &llm.CompleteInput{
		System:      chatSystemPrompt(c, mood),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		MaxTokens:   chatMaxTokens,
		Temperature: llm.Float(chatTemperature),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to generate response")
	}
	if reply.Text == "" {
		return nil, errors.External(nil, "Failed to generate response")
	}

	now := o.clock.Now()
	turn := []entities.ConversationMessage{
		{Role: entities.RoleUser, Content: message, Timestamp: now},
		{Role: entities.RoleAssistant, Content: reply.Text, Timestamp: now},
	}

	// other requests may have changed the character while the LLM answered
	saved, err := o.characterRepo.Modify(ctx, characterrepo.ModifyInput{
		ID: c.ID,
		Apply: func(fresh *entities.Character) error {
			history := append(fresh.ConversationHistory, turn...)
			if n := len(history); n > MaxStoredHistory {
				history = history[n-MaxStoredHistory:]
			}
			fresh.ConversationHistory = history
			fresh.CurrentState = mood
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save conversation for character %s", c.ID)
	}
	c = saved.Character

	slog.InfoContext(ctx, "Character replied",
		"character_id", c.ID,
		"mood", mood,
		"history", len(c.ConversationHistory),
	)

	return &ChatOutput{Message: reply.Text, Character: c.Name, Mood: mood}, nil
}

// GenerateCharacter asks the LLM for a character matching a free-text
// description, stores it and optionally queues its portrait
func (o *Orchestrator) GenerateCharacter(ctx context.Context, input *GenerateCharacterInput) (*GenerateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	prompt := strings.TrimSpace(input.Prompt)
	vb := errors.NewValidationBuilder()
	errors.ValidateMinLength("prompt", prompt, MinPromptLength, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if err := o.requireLLM(); err != nil {
		return nil, err
	}

	reply, err := o.llm.Complete(ctx, &llm.CompleteInput{
		System: generationSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("USER PROMPT: %s\n\nGenerate the character JSON:", prompt),
		}},
		MaxTokens:   generateMaxTokens,
		Temperature: llm.Float(generateTemperature),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create character")
	}

	draft, err := parseDraft(reply.Text)
	if err != nil {
		return nil, err
	}

	c := draft.toCharacter()
	c.ID = o.idGen.Generate()
	c.UserID = input.UserID
	rules.FillDefaults(c)
	fillAttackBonuses(c)

	created, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: c})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store generated character")
	}
	c = created.Character

	slog.InfoContext(ctx, "Character generated",
		"character_id", c.ID,
		"name", c.Name,
		"class", c.Class,
	)

	out := &GenerateCharacterOutput{Character: c, Computed: rules.Compute(c)}

	if input.GenerateImage {
		out.PortraitJobID = o.queuePortrait(ctx, c)
	}

	return out, nil
}

// queuePortrait returns the job id, or "" when no portrait could be queued
func (o *Orchestrator) queuePortrait(ctx context.Context, c *entities.Character) string {
	if o.portraits == nil {
		slog.DebugContext(ctx, "Portrait requested but image generation is not configured",
			"character_id", c.ID,
		)
		return ""
	}

	job, err := o.portraits.EnqueuePortrait(ctx, &portrait.EnqueuePortraitInput{
		CharacterID: c.ID,
		Type:        portrait.TypeStandard,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to queue portrait for generated character",
			"character_id", c.ID,
			"error", err,
		)
		return ""
	}
	return job.Job.ID
}
