package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
	"github.com/dabidoe/character-foundry/internal/orchestrators/conversation"
	"github.com/dabidoe/character-foundry/internal/rules"
)

// CharacterView is the stored document with its derived values alongside
type CharacterView struct {
	*entities.Character
	Computed *rules.Computed `json:"computed"`
}

type listCharactersQuery struct {
	UserID string `form:"userId"`
	Limit  int    `form:"limit"`
	Skip   int    `form:"skip"`
}

// ListCharacters handles GET /api/characters
func (h *Handler) ListCharacters(c *gin.Context) {
	var q listCharactersQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.characters.ListCharacters(c.Request.Context(), &character.ListCharactersInput{
		UserID: q.UserID,
		Limit:  q.Limit,
		Skip:   q.Skip,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type searchQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit"`
}

// SearchCharacters handles GET /api/characters/search
func (h *Handler) SearchCharacters(c *gin.Context) {
	var q searchQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.characters.SearchCharacters(c.Request.Context(), &character.SearchCharactersInput{
		Query: q.Query,
		Limit: q.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out.Characters)
}

// GetStats handles GET /api/characters/stats
func (h *Handler) GetStats(c *gin.Context) {
	out, err := h.characters.GetStats(c.Request.Context(), &character.GetStatsInput{})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out.Stats)
}

// GetCharacter handles GET /api/characters/:id
func (h *Handler) GetCharacter(c *gin.Context) {
	out, err := h.characters.GetCharacter(c.Request.Context(), &character.GetCharacterInput{
		CharacterID: c.Param("id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, CharacterView{Character: out.Character, Computed: out.Computed})
}

// CreateCharacter handles POST /api/characters with a hand-built document
func (h *Handler) CreateCharacter(c *gin.Context) {
	var doc entities.Character
	if !bindJSON(c, &doc) {
		return
	}

	out, err := h.characters.CreateCharacter(c.Request.Context(), &character.CreateCharacterInput{
		Character: &doc,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, CharacterView{Character: out.Character, Computed: out.Computed})
}

type generateCharacterRequest struct {
	Prompt        string `json:"prompt"`
	GenerateImage *bool  `json:"generateImage"`
	UserID        string `json:"userId"`
}

// GenerateCharacter handles POST /api/characters/create. Portraits are
// requested unless generateImage is false.
func (h *Handler) GenerateCharacter(c *gin.Context) {
	var req generateCharacterRequest
	if !bindJSON(c, &req) {
		return
	}

	generateImage := req.GenerateImage == nil || *req.GenerateImage
	out, err := h.conversations.GenerateCharacter(c.Request.Context(), &conversation.GenerateCharacterInput{
		Prompt:        req.Prompt,
		GenerateImage: generateImage,
		UserID:        req.UserID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, out)
}

type updateStatsRequest struct {
	Stats map[string]int `json:"stats"`
}

// UpdateStats handles PATCH /api/characters/:id/stats
func (h *Handler) UpdateStats(c *gin.Context) {
	var req updateStatsRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.UpdateStats(c.Request.Context(), &character.UpdateStatsInput{
		CharacterID: c.Param("id"),
		Stats:       req.Stats,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, CharacterView{Character: out.Character, Computed: out.Computed})
}

// DeleteCharacter handles DELETE /api/characters/:id
func (h *Handler) DeleteCharacter(c *gin.Context) {
	out, err := h.characters.DeleteCharacter(c.Request.Context(), &character.DeleteCharacterInput{
		CharacterID: c.Param("id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type chatRequest struct {
	Message string `json:"message"`
	Mood    string `json:"mood"`
}

// Chat handles POST /api/characters/:id/chat
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.conversations.Chat(c.Request.Context(), &conversation.ChatInput{
		CharacterID: c.Param("id"),
		Message:     req.Message,
		Mood:        req.Mood,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}
