package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the handlers routes are registered from.
type HandlerBundle struct {
	IncomingWebhookHandler gin.HandlerFunc
	HealthGetHandler       gin.HandlerFunc
	HealthHeadHandler      gin.HandlerFunc
}
