package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"pulsebot/models"
	"pulsebot/services/booking"
	"pulsebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxEventDuration bounds one full pipeline run after the webhook has been
// acknowledged: decision, slot lookup, appointment creation, reply.
const maxEventDuration = 2 * time.Minute

// WebhookHandler accepts CRM deliveries and hands them to the orchestrator.
type WebhookHandler struct {
	Orchestrator booking.Orchestrator
}

func NewWebhookHandler(orchestrator booking.Orchestrator) *WebhookHandler {
	return &WebhookHandler{Orchestrator: orchestrator}
}

// IncomingWebhookHandler resolves the customer identity and acknowledges
// the delivery. The conversational reply goes out asynchronously over the
// message channel, never in this response body.
func (h *WebhookHandler) IncomingWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	event, ok := h.parseEvent(c)
	if !ok {
		return
	}

	if event.Contact.ID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing contact identity",
			"payload carried no contactId/contact_id")
		return
	}

	event.EventID = uuid.New().String()
	logger.Info("incoming webhook",
		zap.String("eventId", event.EventID),
		zap.String("contactId", event.Contact.ID),
		zap.Bool("hasMessage", event.Message != ""))

	// The webhook response is just an ack; processing continues detached
	// from the request context so a slow model cannot time the CRM out.
	go func(ev models.InboundEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), maxEventDuration)
		defer cancel()
		if err := h.Orchestrator.HandleEvent(ctx, ev); err != nil {
			logger.Error("event processing failed",
				zap.String("eventId", ev.EventID),
				zap.String("contactId", ev.Contact.ID),
				zap.Error(err))
		}
	}(event)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseEvent reads a JSON or form-encoded body into an InboundEvent.
func (h *WebhookHandler) parseEvent(c *gin.Context) (models.InboundEvent, bool) {
	contentType := c.ContentType()

	if strings.Contains(contentType, "application/x-www-form-urlencoded") ||
		strings.Contains(contentType, "multipart/form-data") {
		if err := c.Request.ParseForm(); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid form body", err.Error())
			return models.InboundEvent{}, false
		}
		return ExtractFormEvent(c.Request.PostForm), true
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid JSON body", "empty or unreadable body")
		return models.InboundEvent{}, false
	}
	return ExtractEvent(body), true
}
