package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the response headers for a JSON API that also serves
// uploaded images.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		c.Next()
	}
}
