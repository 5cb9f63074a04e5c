package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthGetHandler reports liveness for uptime monitors.
func HealthGetHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Pulse John Bot is running",
	})
}

// HealthHeadHandler answers HEAD probes with an empty 200.
func HealthHeadHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}
