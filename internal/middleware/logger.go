package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests. Bodies are never
// logged since they carry passwords and patient data.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		l := logger.FromContext(c.Request.Context())

		var event *zerolog.Event
		var msg string
		switch {
		case statusCode >= 500:
			event, msg = l.Error(), "Server error"
		case statusCode >= 400:
			event, msg = l.Warn(), "Client error"
		default:
			event, msg = l.Info(), "Request processed"
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Int("size", c.Writer.Size()).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
