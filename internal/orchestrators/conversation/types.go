package conversation

import (
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/rules"
)

// ChatInput is one user message to a character
type ChatInput struct {
	CharacterID string
	Message     string
	Mood        string
}

// ChatOutput is the in-character reply
type ChatOutput struct {
	Message   string        `json:"message"`
	Character string        `json:"character"`
	Mood      entities.Mood `json:"mood"`
}

// GenerateCharacterInput describes a character in free text
type GenerateCharacterInput struct {
	Prompt        string
	GenerateImage bool
	UserID        string
}

// GenerateCharacterOutput holds the stored character. PortraitJobID is set
// when a portrait was queued.
type GenerateCharacterOutput struct {
	Character     *entities.Character `json:"character"`
	Computed      *rules.Computed     `json:"computed"`
	PortraitJobID string              `json:"portraitJobId,omitempty"`
}
