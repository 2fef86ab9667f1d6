// Package v1 serves the JSON HTTP API
package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
	"github.com/dabidoe/character-foundry/internal/orchestrators/conversation"
	"github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
)

// HealthCheck reports the state of one backing service, for example
// "connected" or "not configured"
type HealthCheck func(ctx context.Context) string

// Config holds dependencies for the API handler
type Config struct {
	Characters    character.Service
	Conversations conversation.Service
	Dice          dice.Service
	Library       library.Service
	Portraits     portrait.Service

	// HealthChecks are reported by GET /api/health keyed by service name
	HealthChecks map[string]HealthCheck
	Clock        clock.Clock
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Characters == nil {
		vb.RequiredField("Characters")
	}
	if c.Conversations == nil {
		vb.RequiredField("Conversations")
	}
	if c.Dice == nil {
		vb.RequiredField("Dice")
	}
	if c.Library == nil {
		vb.RequiredField("Library")
	}
	if c.Portraits == nil {
		vb.RequiredField("Portraits")
	}

	return vb.Build()
}

// Handler implements the /api routes
type Handler struct {
	characters    character.Service
	conversations conversation.Service
	dice          dice.Service
	library       library.Service
	portraits     portrait.Service
	healthChecks  map[string]HealthCheck
	clock         clock.Clock
}

// NewHandler creates a new API handler with the given configuration
func NewHandler(cfg *Config) (*Handler, error) {
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

	return &Handler{
		characters:    cfg.Characters,
		conversations: cfg.Conversations,
		dice:          cfg.Dice,
		library:       cfg.Library,
		portraits:     cfg.Portraits,
		healthChecks:  cfg.HealthChecks,
		clock:         clk,
	}, nil
}

// Register mounts every route on the /api group
func (h *Handler) Register(api gin.IRouter) {
	api.GET("/health", h.Health)

	chars := api.Group("/characters")
	chars.GET("", h.ListCharacters)
	chars.GET("/search", h.SearchCharacters)
	chars.GET("/stats", h.GetStats)
	chars.POST("", h.CreateCharacter)
	chars.POST("/create", h.GenerateCharacter)
	chars.GET("/:id", h.GetCharacter)
	chars.PATCH("/:id/stats", h.UpdateStats)
	chars.DELETE("/:id", h.DeleteCharacter)

	chars.POST("/:id/roll/skill", h.RollSkill)
	chars.POST("/:id/roll/save", h.RollSave)
	chars.POST("/:id/attack", h.Attack)
	chars.PATCH("/:id/damage", h.ApplyDamage)
	chars.PATCH("/:id/heal", h.Heal)
	chars.POST("/:id/use-ability", h.UseAbility)
	chars.POST("/:id/cast-spell", h.CastSpell)
	chars.POST("/:id/rest/short", h.ShortRest)
	chars.POST("/:id/rest/long", h.LongRest)

	chars.POST("/:id/chat", h.Chat)
	chars.POST("/:id/portrait", h.EnqueuePortrait)

	chars.POST("/:id/inventory", h.AddItem)
	chars.PATCH("/:id/inventory/:itemId/equip", h.EquipItem)
	chars.PATCH("/:id/inventory/:itemId/unequip", h.UnequipItem)
	chars.DELETE("/:id/inventory/:itemId", h.RemoveItem)

	api.GET("/portraits/:jobId", h.GetPortraitJob)

	diceGroup := api.Group("/dice")
	diceGroup.POST("/roll", h.RollDice)
	diceGroup.GET("/sessions/:entityId", h.GetRollSession)
	diceGroup.DELETE("/sessions/:entityId", h.ClearRollSession)
	diceGroup.POST("/ability-scores", h.RollAbilityScores)

	lib := api.Group("/library")
	lib.GET("/items", h.ListItems)
	lib.GET("/items/:guid", h.GetItem)
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health reports liveness and the state of each optional service
func (h *Handler) Health(c *gin.Context) {
	services := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		services[name] = check(c.Request.Context())
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.clock.Now(),
		Services:  services,
	})
}
