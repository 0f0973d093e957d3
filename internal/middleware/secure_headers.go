package middleware

import (
	"github.com/gin-gonic/gin"
)

// hstsValue is only sent in production, where TLS terminates in front of the API.
const hstsValue = "max-age=31536000; includeSubDomains"

// SecureHeaders marks every response as uncacheable and unframeable.
func SecureHeaders(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		if production {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
