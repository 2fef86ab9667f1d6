package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	dicesession "github.com/dabidoe/character-foundry/internal/repositories/dice_session"
)

// Message types
const (
	TypeConnection         = "connection"
	TypePing               = "ping"
	TypePong               = "pong"
	TypeRoll               = "roll"
	TypeRollResult         = "roll_result"
	TypeGeneratePortrait   = "generate_portrait"
	TypeGenerationProgress = "generation_progress"
	TypeGenerationComplete = "generation_complete"
	TypeGenerationError    = "generation_error"
	TypeError              = "error"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type welcomeMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	ClientID string `json:"clientId"`
	Message  string `json:"message"`
}

type pongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type rollMessage struct {
	Type string                `json:"type"`
	Roll *dicesession.DiceRoll `json:"roll"`
}

type progressMessage struct {
	Type string `json:"type"`
	portrait.Progress
}

type completeMessage struct {
	Type   string                           `json:"type"`
	Result *portrait.GeneratePortraitOutput `json:"result"`
}

type rollRequest struct {
	EntityID    string `json:"entityId"`
	Context     string `json:"context"`
	Notation    string `json:"notation"`
	Description string `json:"description"`
}

type portraitRequest struct {
	CharacterID string `json:"characterId"`
	Prompt      string `json:"prompt"`
	Type        string `json:"type"`
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (h *Hub) dispatch(c *client, msg *inbound) {
	switch msg.Type {
	case TypePing:
		c.enqueue(pongMessage{Type: TypePong, Timestamp: h.clock.Now().UnixMilli()})

	case TypeRoll:
		h.handleRoll(c, msg.Data)

	case TypeGeneratePortrait:
		h.handleGeneratePortrait(c, msg.Data)

	default:
		c.enqueue(errorMessage{Type: TypeError, Message: fmt.Sprintf("Unknown message type: %s", msg.Type)})
	}
}

func (h *Hub) handleRoll(c *client, raw json.RawMessage) {
	var req rollRequest
	if err := decodeData(raw, &req); err != nil {
		c.enqueue(errorMessage{Type: TypeError, Message: "Invalid roll request"})
		return
	}
	if req.Notation == "" {
		c.enqueue(errorMessage{Type: TypeError, Message: "notation is required"})
		return
	}
	if req.EntityID == "" {
		req.EntityID = c.id
	}
	if req.Context == "" {
		req.Context = "websocket"
	}

	out, err := h.dice.RollDice(c.ctx, &dice.RollDiceInput{
		EntityID:    req.EntityID,
		Context:     req.Context,
		Notation:    req.Notation,
		Description: req.Description,
	})
	if err != nil {
		c.enqueue(errorMessage{Type: TypeError, Message: errors.GetMessage(err)})
		return
	}

	c.enqueue(rollMessage{Type: TypeRollResult, Roll: out.Roll})
}

// handleGeneratePortrait runs the generation off the read loop so pings and
// other requests keep flowing while the image is produced
func (h *Hub) handleGeneratePortrait(c *client, raw json.RawMessage) {
	var req portraitRequest
	if err := decodeData(raw, &req); err != nil {
		c.enqueue(errorMessage{Type: TypeError, Message: "Invalid portrait request"})
		return
	}
	if req.CharacterID == "" {
		c.enqueue(errorMessage{Type: TypeError, Message: "characterId is required"})
		return
	}

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()

		out, err := h.portraits.GeneratePortrait(c.ctx, &portrait.GeneratePortraitInput{
			CharacterID: req.CharacterID,
			Prompt:      req.Prompt,
			Type:        req.Type,
			Progress: func(p portrait.Progress) {
				c.enqueue(progressMessage{Type: TypeGenerationProgress, Progress: p})
			},
		})
		if err != nil {
			slog.WarnContext(c.ctx, "Portrait generation over websocket failed",
				"client_id", c.id,
				"character_id", req.CharacterID,
				"error", err,
			)
			c.enqueue(errorMessage{Type: TypeGenerationError, Message: errors.GetMessage(err)})
			return
		}

		c.enqueue(completeMessage{Type: TypeGenerationComplete, Result: out})
	}()
}
