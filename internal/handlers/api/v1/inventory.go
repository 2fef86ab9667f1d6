package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
)

type addItemRequest struct {
	GUID     string         `json:"guid"`
	Item     *entities.Item `json:"item"`
	Quantity int            `json:"quantity"`
}

// AddItem handles POST /api/characters/:id/inventory. The body names a
// library guid or carries a custom item.
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.AddItem(c.Request.Context(), &character.AddItemInput{
		CharacterID: c.Param("id"),
		GUID:        req.GUID,
		Item:        req.Item,
		Quantity:    req.Quantity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, out)
}

type equipRequest struct {
	Slot string `json:"slot"`
}

// EquipItem handles PATCH /api/characters/:id/inventory/:itemId/equip
func (h *Handler) EquipItem(c *gin.Context) {
	var req equipRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	out, err := h.characters.EquipItem(c.Request.Context(), &character.EquipItemInput{
		CharacterID: c.Param("id"),
		ItemID:      c.Param("itemId"),
		Slot:        req.Slot,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// UnequipItem handles PATCH /api/characters/:id/inventory/:itemId/unequip
func (h *Handler) UnequipItem(c *gin.Context) {
	out, err := h.characters.UnequipItem(c.Request.Context(), &character.UnequipItemInput{
		CharacterID: c.Param("id"),
		ItemID:      c.Param("itemId"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type removeItemQuery struct {
	Quantity int `form:"quantity"`
}

// RemoveItem handles DELETE /api/characters/:id/inventory/:itemId. Without
// ?quantity the whole stack is dropped.
func (h *Handler) RemoveItem(c *gin.Context) {
	var q removeItemQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.characters.RemoveItem(c.Request.Context(), &character.RemoveItemInput{
		CharacterID: c.Param("id"),
		ItemID:      c.Param("itemId"),
		Quantity:    q.Quantity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}
