package middleware

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"codebeyond/internal/dto"
)

// LoggingMiddleware logs one line per request once the handler chain has finished.
func LoggingMiddleware(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request handled")
	}
}

// AdminGuard admits requests carrying "Authorization: Bearer <token>". The optional
// X-Reviewer header names the acting admin on review records.
func AdminGuard(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			dto.UnauthorizedError(c)
			return
		}
		if reviewer := strings.TrimSpace(c.GetHeader("X-Reviewer")); reviewer != "" {
			c.Set(dto.ReviewerKey, reviewer)
		}
		c.Next()
	}
}
