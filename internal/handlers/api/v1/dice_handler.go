package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	dicesession "github.com/dabidoe/character-foundry/internal/repositories/dice_session"
)

type rollDiceRequest struct {
	EntityID    string `json:"entityId"`
	Context     string `json:"context"`
	Notation    string `json:"notation"`
	Description string `json:"description"`
}

// DiceSessionResponse is a roll session as returned to clients
type DiceSessionResponse struct {
	EntityID  string                 `json:"entityId"`
	Context   string                 `json:"context"`
	Rolls     []dicesession.DiceRoll `json:"rolls"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt time.Time              `json:"expiresAt"`
}

func toSessionResponse(s *dicesession.DiceSession) *DiceSessionResponse {
	if s == nil {
		return nil
	}
	rolls := s.Rolls
	if rolls == nil {
		rolls = []dicesession.DiceRoll{}
	}
	return &DiceSessionResponse{
		EntityID:  s.EntityID,
		Context:   s.Context,
		Rolls:     rolls,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// RollDiceResponse is the new roll plus the session it was stored in
type RollDiceResponse struct {
	Roll    *dicesession.DiceRoll `json:"roll"`
	Session *DiceSessionResponse  `json:"session"`
}

// RollDice rolls dice using the specified notation and stores the result in a session
func (h *Handler) RollDice(c *gin.Context) {
	var req rollDiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EntityID == "" {
		fail(c, errors.InvalidArgument("entityId is required"))
		return
	}
	if req.Context == "" {
		fail(c, errors.InvalidArgument("context is required"))
		return
	}
	if req.Notation == "" {
		fail(c, errors.InvalidArgument("notation is required"))
		return
	}

	out, err := h.dice.RollDice(c.Request.Context(), &dice.RollDiceInput{
		EntityID:    req.EntityID,
		Context:     req.Context,
		Notation:    req.Notation,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, RollDiceResponse{Roll: out.Roll, Session: toSessionResponse(out.Session)})
}

type sessionQuery struct {
	Context string `form:"context"`
}

// GetRollSession retrieves an existing dice roll session
func (h *Handler) GetRollSession(c *gin.Context) {
	var q sessionQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Context == "" {
		fail(c, errors.InvalidArgument("context is required"))
		return
	}

	out, err := h.dice.GetRollSession(c.Request.Context(), &dice.GetRollSessionInput{
		EntityID: c.Param("entityId"),
		Context:  q.Context,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, toSessionResponse(out.Session))
}

// ClearRollSessionResponse reports how many rolls were discarded
type ClearRollSessionResponse struct {
	RollsDeleted int `json:"rollsDeleted"`
}

// ClearRollSession removes a dice roll session
func (h *Handler) ClearRollSession(c *gin.Context) {
	var q sessionQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Context == "" {
		fail(c, errors.InvalidArgument("context is required"))
		return
	}

	out, err := h.dice.ClearRollSession(c.Request.Context(), &dice.ClearRollSessionInput{
		EntityID: c.Param("entityId"),
		Context:  q.Context,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, ClearRollSessionResponse{RollsDeleted: out.RollsDeleted})
}

type rollAbilityScoresRequest struct {
	EntityID string `json:"entityId"`
	Method   string `json:"method"`
}

// RollAbilityScoresResponse holds the six scores and the rolls behind them
type RollAbilityScoresResponse struct {
	Scores  []int                   `json:"scores"`
	Rolls   []*dicesession.DiceRoll `json:"rolls"`
	Session *DiceSessionResponse    `json:"session"`
}

// RollAbilityScores rolls six ability scores for character creation
func (h *Handler) RollAbilityScores(c *gin.Context) {
	var req rollAbilityScoresRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EntityID == "" {
		fail(c, errors.InvalidArgument("entityId is required"))
		return
	}

	out, err := h.dice.RollAbilityScores(c.Request.Context(), &dice.RollAbilityScoresInput{
		EntityID: req.EntityID,
		Method:   req.Method,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, RollAbilityScoresResponse{
		Scores:  out.Scores,
		Rolls:   out.Rolls,
		Session: toSessionResponse(out.Session),
	})
}
