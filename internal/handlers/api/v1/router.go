package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// RouterConfig holds everything mounted on the gin engine
type RouterConfig struct {
	API *Handler
	// WebSocket is served at GET /ws when set
	WebSocket      http.Handler
	AllowedOrigins []string
}

// Validate ensures the API handler is present
func (c *RouterConfig) Validate() error {
	if c.API == nil {
		return errors.InvalidArgument("API handler is required")
	}
	return nil
}

// NewRouter builds the gin engine with middleware, /api routes and /ws
func NewRouter(cfg *RouterConfig) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(Recovery(), RequestLogger(), CORS(cfg.AllowedOrigins))
	r.NoRoute(NoRoute)

	cfg.API.Register(r.Group("/api"))

	if cfg.WebSocket != nil {
		r.GET("/ws", gin.WrapH(cfg.WebSocket))
	}

	return r, nil
}
