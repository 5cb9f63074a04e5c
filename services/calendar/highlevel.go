package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"pulsebot/models"
	"pulsebot/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://rest.gohighlevel.com/v1"

// HighLevelCalendar talks to the GoHighLevel appointments API. It serves as
// both the slot directory and the appointment sink.
type HighLevelCalendar struct {
	APIKey   string
	BaseURL  string
	Location *time.Location
	Client   *http.Client
}

func NewHighLevelCalendar(apiKey string, loc *time.Location, timeout time.Duration) *HighLevelCalendar {
	return &HighLevelCalendar{
		APIKey:   apiKey,
		BaseURL:  defaultBaseURL,
		Location: loc,
		Client:   &http.Client{Timeout: timeout},
	}
}

// FreeSlots queries the free-slots endpoint for one calendar day and returns
// the start times in chronological order.
func (h *HighLevelCalendar) FreeSlots(ctx context.Context, calendarID, date string) ([]time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, h.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid slot date %q: %w", date, err)
	}

	q := url.Values{}
	q.Set("calendarId", calendarID)
	q.Set("startDate", fmt.Sprintf("%d", day.UnixMilli()))
	q.Set("endDate", fmt.Sprintf("%d", day.AddDate(0, 0, 1).UnixMilli()))
	q.Set("timezone", h.Location.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		h.BaseURL+"/appointments/slots?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slot lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("slot lookup read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slot lookup status %d: %s", resp.StatusCode, truncateBody(body))
	}

	// The endpoint keys slots by date; tolerate either the dated shape or a
	// flat "slots" array.
	var raw []gjson.Result
	if dated := gjson.GetBytes(body, date+".slots"); dated.Exists() {
		raw = dated.Array()
	} else {
		raw = gjson.GetBytes(body, "slots").Array()
	}

	slots := make([]time.Time, 0, len(raw))
	for _, item := range raw {
		t, perr := time.Parse(time.RFC3339, item.String())
		if perr != nil {
			utils.GetLogger().Warn("skipping unparsable slot",
				zap.String("slot", item.String()), zap.Error(perr))
			continue
		}
		slots = append(slots, t.In(h.Location))
	}
	sort.Slice(slots, func(a, b int) bool { return slots[a].Before(slots[b]) })
	return slots, nil
}

// CreateAppointment posts the chosen slot to the appointments endpoint.
func (h *HighLevelCalendar) CreateAppointment(ctx context.Context, appt models.Appointment) error {
	payload, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("marshal appointment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.BaseURL+"/appointments/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+h.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("appointment create failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("appointment create status %d: %s", resp.StatusCode, truncateBody(body))
	}

	utils.GetLogger().Info("appointment created",
		zap.String("calendarId", appt.CalendarID),
		zap.String("slot", appt.StartTime))
	return nil
}

func truncateBody(b []byte) string {
	if len(b) > 500 {
		b = b[:500]
	}
	return string(b)
}
