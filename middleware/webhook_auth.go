package middleware

import (
	"crypto/subtle"
	"net/http"

	"pulsebot/config"
	"pulsebot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookAuthMiddleware checks the shared token the CRM is configured to
// send with each delivery. With no token configured the check is disabled.
func WebhookAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.AppConfig.WebhookToken
		if expected == "" {
			c.Next()
			return
		}

		got := c.GetHeader("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			utils.GetLogger().Warn("webhook token mismatch", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
		c.Next()
	}
}
