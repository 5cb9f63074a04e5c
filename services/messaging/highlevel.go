package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pulsebot/models"
	"pulsebot/utils"

	"go.uber.org/zap"
)

const defaultMessagesURL = "https://services.leadconnectorhq.com/conversations/messages"

// HighLevelChannel pushes SMS replies into the HighLevel conversation the
// webhook came from.
type HighLevelChannel struct {
	APIKey            string
	DefaultLocationID string
	URL               string
	Client            *http.Client
}

func NewHighLevelChannel(apiKey, locationID string, timeout time.Duration) *HighLevelChannel {
	return &HighLevelChannel{
		APIKey:            apiKey,
		DefaultLocationID: locationID,
		URL:               defaultMessagesURL,
		Client:            &http.Client{Timeout: timeout},
	}
}

func (h *HighLevelChannel) Send(ctx context.Context, contact models.Contact, text string) error {
	if text == "" {
		return nil
	}

	locationID := contact.LocationID
	if locationID == "" {
		locationID = h.DefaultLocationID
	}

	body, err := json.Marshal(map[string]string{
		"locationId": locationID,
		"contactId":  contact.ID,
		"type":       "SMS",
		"message":    text,
		"source":     "api",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("hl-api-key", h.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("message send status %d: %s", resp.StatusCode, respBody)
	}

	utils.GetLogger().Debug("message delivered",
		zap.String("contactId", contact.ID),
		zap.Int("status", resp.StatusCode))
	return nil
}
