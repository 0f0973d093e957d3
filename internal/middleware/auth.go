package middleware

import (
	"net/http"
	"strings"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/pkg/auth"
	"user-profile-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ContextUIDKey is where AuthMiddleware stores the verified uid.
const ContextUIDKey = "auth_uid"

// AuthMiddleware requires a Bearer ID token verified by the identity provider.
func AuthMiddleware(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.MsgUnauthorized})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		uid, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			logger.GlobalLogger.Warnf("ID token rejected: client_ip=%s, error=%v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.MsgInvalidToken})
			return
		}

		c.Set(ContextUIDKey, uid)
		c.Next()
	}
}
