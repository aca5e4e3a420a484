package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/logger"
)

// ErrorHandler logs the errors handlers attached with c.Error. The response
// itself has already been written by the handler.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		l := logger.FromContext(c.Request.Context())
		for _, e := range c.Errors {
			l.Error().
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", c.Writer.Status()).
				Msg("Request error")
		}
	}
}
