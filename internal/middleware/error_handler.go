package middleware

import (
	"net/http"

	"user-profile-api/internal/errors"
	"user-profile-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps the last handler error to the {error, details?} envelope.
// details carries the technical message and is only sent for 500s.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := errors.MapError(c.Errors.Last().Err, c.Request.Method)

		body := gin.H{"error": appErr.UserMessage}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.GlobalLogger.Errorf("Request failed: path=%s, method=%s, client_ip=%s, error=%s",
				c.Request.URL.Path,
				c.Request.Method,
				c.ClientIP(),
				appErr.TechnicalMessage)
			body["details"] = appErr.TechnicalMessage
		} else {
			logger.GlobalLogger.Warnf("Request rejected: path=%s, method=%s, status=%d, error=%s",
				c.Request.URL.Path,
				c.Request.Method,
				appErr.HTTPStatus,
				appErr.TechnicalMessage)
		}

		c.JSON(appErr.HTTPStatus, body)
	}
}
