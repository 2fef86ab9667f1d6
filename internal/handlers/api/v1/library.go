package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
)

type listItemsQuery struct {
	Category string `form:"category"`
	// Type is the older name for category
	Type     string `form:"type"`
	Rarity   string `form:"rarity"`
	Template *bool  `form:"template"`
	Public   *bool  `form:"public"`
	UserID   string `form:"userId"`
	Search   string `form:"search"`
	Limit    int    `form:"limit"`
	Skip     int    `form:"skip"`
}

// ListItems handles GET /api/library/items
func (h *Handler) ListItems(c *gin.Context) {
	var q listItemsQuery
	if !bindQuery(c, &q) {
		return
	}

	category := q.Category
	if category == "" {
		category = q.Type
	}

	out, err := h.library.ListItems(c.Request.Context(), &library.ListItemsInput{
		Category: category,
		Rarity:   q.Rarity,
		Template: q.Template,
		Public:   q.Public,
		UserID:   q.UserID,
		Search:   q.Search,
		Limit:    q.Limit,
		Skip:     q.Skip,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// GetItem handles GET /api/library/items/:guid
func (h *Handler) GetItem(c *gin.Context) {
	out, err := h.library.GetItem(c.Request.Context(), &library.GetItemInput{GUID: c.Param("guid")})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out.Item)
}
