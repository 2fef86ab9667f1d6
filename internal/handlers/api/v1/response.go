package v1

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// Envelope wraps every JSON response
type Envelope struct {
	Success bool                 `json:"success"`
	Data    any                  `json:"data,omitempty"`
	Error   *errors.ResponseBody `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func ok(c *gin.Context, data any) {
	respond(c, http.StatusOK, data)
}

// fail writes the error envelope. Server-side failures are logged with
// their cause; the client only sees the top-level message.
func fail(c *gin.Context, err error) {
	status, body := errors.ToResponse(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: body})
}

// bindJSON decodes a required body
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, errors.InvalidArgumentf("invalid request body: %v", err))
		return false
	}
	return true
}

// bindOptionalJSON decodes the body when one was sent
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		fail(c, errors.InvalidArgumentf("invalid query: %v", err))
		return false
	}
	return true
}
