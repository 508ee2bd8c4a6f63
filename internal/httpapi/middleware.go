package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/token"
)

const identityKey = "identity"

// RequireSession authenticates the request from its cookies and runs layers
// (role gates) on top. A silently refreshed access token is written back as
// a cookie before the handler runs.
func (h *Handler) RequireSession(layers ...auth.Layer) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.app.Auth.Pipeline(c.Request.Context(), h.cookies.Credentials(c), layers...)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		if s.ReissuedAccess != "" {
			h.cookies.SetAccess(c, s.ReissuedAccess, h.app.Tokens.TTL(token.Access))
		}

		c.Set(identityKey, s.Identity)
		ctx := logger.NewContext(c.Request.Context(), h.log.With("user_id", s.Identity.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func identity(c *gin.Context) auth.Identity {
	id, _ := c.Get(identityKey)
	v, _ := id.(auth.Identity)
	return v
}

// RequestLogger logs one line per request through slog.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.LogAttrs(c.Request.Context(), levelFor(c.Writer.Status()), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
