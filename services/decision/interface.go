package decision

import (
	"context"

	"pulsebot/models"
)

// Client is one backing model able to produce the raw decision payload.
type Client interface {
	// Complete sends the persona, bounded history and current context text
	// and returns the model's raw output.
	Complete(ctx context.Context, history []models.Turn, contextText string) (string, error)
}

// Service turns conversation history plus the current context into a
// normalized Decision. It never fails: upstream errors and malformed
// payloads degrade to the safe default so the conversation keeps moving.
type Service interface {
	Decide(ctx context.Context, contactID string, history []models.Turn, contextText, latestMessage string) models.Decision
}

// DefaultService implements Service on top of a Client and the Interpreter.
type DefaultService struct {
	Client       Client
	Interpreter  *Interpreter
	HistoryLimit int // turns of history sent to the model
}

func (s *DefaultService) Decide(ctx context.Context, contactID string, history []models.Turn, contextText, latestMessage string) models.Decision {
	if s.HistoryLimit > 0 && len(history) > s.HistoryLimit {
		history = history[len(history)-s.HistoryLimit:]
	}

	raw, err := s.Client.Complete(ctx, history, contextText)
	if err != nil {
		return s.Interpreter.Degrade(contactID, err)
	}
	return s.Interpreter.Interpret(raw, latestMessage)
}
