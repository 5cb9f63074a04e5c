package routes

import (
	"pulsebot/handlers"
	"pulsebot/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Health checks for uptime monitors.
	r.GET("/", hb.HealthGetHandler)
	r.HEAD("/", hb.HealthHeadHandler)

	// Inbound CRM webhook.
	webhook := r.Group("/webhook")
	webhook.Use(middleware.WebhookAuthMiddleware())
	{
		webhook.POST("/incoming", hb.IncomingWebhookHandler)
	}
}
