package decision

import (
	"strings"
	"time"

	"pulsebot/models"
	"pulsebot/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Interpreter validates raw model output into a Decision and resolves
// relative date language against the configured timezone.
type Interpreter struct {
	Location *time.Location
	Now      func() time.Time // overridable in tests; defaults to time.Now
}

func NewInterpreter(loc *time.Location) *Interpreter {
	return &Interpreter{Location: loc, Now: time.Now}
}

// Degrade returns the safe default decision after an upstream failure.
func (i *Interpreter) Degrade(contactID string, err error) models.Decision {
	utils.GetLogger().Warn("decision service unavailable, degrading to default",
		zap.String("contactId", contactID), zap.Error(err))
	return models.SafeDefault()
}

// Interpret parses the raw payload and applies the date-resolution policy.
// A payload that is not the expected shape yields the safe default; a
// booking action without a resolvable date is demoted to ask_for_day.
func (i *Interpreter) Interpret(raw, latestMessage string) models.Decision {
	payload := stripFences(raw)
	if !gjson.Valid(payload) {
		utils.GetLogger().Warn("malformed decision payload",
			zap.String("raw", truncate(raw, 500)))
		return models.SafeDefault()
	}

	root := gjson.Parse(payload)
	dec := models.Decision{
		Reply:  root.Get("reply").String(),
		Action: parseAction(root.Get("action").String()),
		Window: parseWindow(root.Get("preferred_time_of_day").String()),
	}
	if dec.Action == models.ActionInvalid {
		dec.Action = models.ActionNone
	}

	// The model's date is authoritative when it parses; otherwise fall back
	// to scanning the customer's own words.
	if date := root.Get("preferred_date_iso").String(); date != "" {
		if _, err := time.Parse("2006-01-02", date); err == nil {
			dec.PreferredDate = date
		} else {
			utils.GetLogger().Warn("decision carried unparsable date",
				zap.String("date", date))
		}
	}
	if dec.PreferredDate == "" {
		dec.PreferredDate = i.resolveRelativeDate(latestMessage)
	}

	// Booking without a date is meaningless; ask for the day instead.
	if dec.Action == models.ActionBookCallback && dec.PreferredDate == "" {
		dec.Action = models.ActionAskForDay
	}

	return dec
}

func parseAction(s string) models.Action {
	switch models.Action(strings.ToLower(strings.TrimSpace(s))) {
	case models.ActionNone:
		return models.ActionNone
	case models.ActionAskForDay:
		return models.ActionAskForDay
	case models.ActionAskForTime:
		return models.ActionAskForTime
	case models.ActionBookCallback:
		return models.ActionBookCallback
	default:
		return models.ActionInvalid
	}
}

func parseWindow(s string) models.Window {
	switch models.Window(strings.ToLower(strings.TrimSpace(s))) {
	case models.WindowMorning:
		return models.WindowMorning
	case models.WindowAfternoon:
		return models.WindowAfternoon
	case models.WindowEvening:
		return models.WindowEvening
	default:
		return models.WindowNone
	}
}

var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// resolveRelativeDate scans the latest customer message for a small fixed
// vocabulary of relative dates and computes the calendar date in the
// configured zone. Weekday names mean the next occurrence of that day.
func (i *Interpreter) resolveRelativeDate(message string) string {
	if message == "" {
		return ""
	}
	now := i.Now().In(i.Location)
	text := strings.ToLower(message)

	switch {
	case strings.Contains(text, "tomorrow"):
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case strings.Contains(text, "today"), strings.Contains(text, "tonight"):
		return now.Format("2006-01-02")
	}

	for _, wd := range weekdays {
		if !strings.Contains(text, wd.name) {
			continue
		}
		ahead := (int(wd.day) - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return now.AddDate(0, 0, ahead).Format("2006-01-02")
	}
	return ""
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
