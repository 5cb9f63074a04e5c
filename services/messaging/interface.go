package messaging

import (
	"context"

	"pulsebot/models"
)

// MessageChannel delivers text back to the customer. Fire-and-forget: the
// orchestrator never retries and never surfaces delivery failures to the
// customer, they are logged and dropped.
type MessageChannel interface {
	Send(ctx context.Context, contact models.Contact, text string) error
}
