package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
)

type portraitRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

// EnqueuePortrait handles POST /api/characters/:id/portrait. The portrait is
// generated by the background worker; poll GET /api/portraits/:jobId.
func (h *Handler) EnqueuePortrait(c *gin.Context) {
	var req portraitRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	out, err := h.portraits.EnqueuePortrait(c.Request.Context(), &portrait.EnqueuePortraitInput{
		CharacterID: c.Param("id"),
		Prompt:      req.Prompt,
		Type:        req.Type,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusAccepted, out)
}

// GetPortraitJob handles GET /api/portraits/:jobId
func (h *Handler) GetPortraitJob(c *gin.Context) {
	out, err := h.portraits.GetPortraitJob(c.Request.Context(), &portrait.GetPortraitJobInput{
		JobID: c.Param("jobId"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out.State)
}
