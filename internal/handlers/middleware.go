package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/storefront/internal/logx"
	"example.com/storefront/internal/service"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	sessionCookie   = "session"
)

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = logx.Error()
		case status >= http.StatusBadRequest:
			ev = logx.Warn()
		default:
			ev = logx.Info()
		}
		p, _ := service.PrincipalFrom(c.Request.Context())
		ev.Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Uint("user_id", p.UserID).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

// Recover turns a panic into a 500 and logs it with the request id.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logx.Error().
					Str("request_id", c.GetString(requestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			}
		}()
		c.Next()
	}
}

// Principal attaches the caller from a Bearer token or the session cookie.
// It never rejects: anonymous and invalid tokens continue without a
// principal and the services decide what that allows.
func Principal(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := ""
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			tok = strings.TrimPrefix(ah, "Bearer ")
		}
		if tok == "" {
			if v, err := c.Cookie(sessionCookie); err == nil {
				tok = v
			}
		}
		if tok != "" {
			if p, err := auth.ParseToken(tok); err == nil {
				c.Request = c.Request.WithContext(service.WithPrincipal(c.Request.Context(), p))
			}
		}
		c.Next()
	}
}
