package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// AdminAuth guards the config authoring surface with a shared bearer
// token. An empty configured token disables the guard, which is only
// acceptable in local development.
type AdminAuth struct {
	log   *logger.Logger
	token string
}

func NewAdminAuth(log *logger.Logger, token string) *AdminAuth {
	authLog := log.With("Middleware", "AdminAuth")
	if token == "" {
		authLog.Warn("admin token not configured, admin endpoints are unprotected")
	}
	return &AdminAuth{log: authLog, token: token}
}

func (am *AdminAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.token == "" {
			c.Next()
			return
		}
		presented := extractBearerToken(c)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(am.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
