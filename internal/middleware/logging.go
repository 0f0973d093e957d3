package middleware

import (
	"time"

	"user-profile-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		if id := c.GetString(ContextRequestIDKey); id != "" {
			logger.GlobalLogger.Printf("%s %s %d %v request_id=%s", method, path, status, latency, id)
			return
		}
		logger.GlobalLogger.Printf("%s %s %d %v", method, path, status, latency)
	}
}
