package decision

import (
	"testing"
	"time"

	"pulsebot/models"
)

func testInterpreter(t *testing.T, now time.Time) *Interpreter {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	i := NewInterpreter(loc)
	i.Now = func() time.Time { return now }
	return i
}

// Monday 2025-06-02, 09:00 London.
var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func TestInterpretWellFormedPayload(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	raw := `{"reply":"Morning works, let me sort that.","action":"book_callback","preferred_date_iso":"2025-06-02","preferred_time_of_day":"morning"}`
	dec := i.Interpret(raw, "can you do monday morning?")

	if dec.Action != models.ActionBookCallback {
		t.Fatalf("expected book_callback, got %q", dec.Action)
	}
	if dec.PreferredDate != "2025-06-02" {
		t.Fatalf("expected model date kept, got %q", dec.PreferredDate)
	}
	if dec.Window != models.WindowMorning {
		t.Fatalf("expected morning window, got %q", dec.Window)
	}
	if dec.Reply == "" {
		t.Fatal("expected reply preserved")
	}
}

func TestInterpretMalformedPayloadDegrades(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	for _, raw := range []string{
		"",
		"sorry, I can't answer that",
		`{"reply": unterminated`,
	} {
		dec := i.Interpret(raw, "hello")
		if dec.Reply != "" || dec.Action != models.ActionNone {
			t.Fatalf("raw %q: expected safe default, got %+v", raw, dec)
		}
	}
}

func TestInterpretToleratesExtraFieldsAndFences(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	raw := "```json\n{\"reply\":\"Sure 👍\",\"action\":\"none\",\"confidence\":0.92,\"debug\":{\"x\":1}}\n```"
	dec := i.Interpret(raw, "")
	if dec.Action != models.ActionNone || dec.Reply != "Sure 👍" {
		t.Fatalf("unexpected decision: %+v", dec)
	}
}

func TestInterpretUnknownActionBecomesNone(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	dec := i.Interpret(`{"reply":"hi","action":"summon_manager"}`, "")
	if dec.Action != models.ActionNone {
		t.Fatalf("expected unknown action coerced to none, got %q", dec.Action)
	}
}

func TestRelativeDateResolution(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	cases := []struct {
		message string
		want    string
	}{
		{"can we do it today?", "2025-06-02"},
		{"tonight would be great", "2025-06-02"},
		{"tomorrow afternoon please", "2025-06-03"},
		{"how about Friday?", "2025-06-06"},
		// Naming the current weekday means next week's occurrence.
		{"monday suits me", "2025-06-09"},
		{"whenever really", ""},
	}

	for _, tc := range cases {
		dec := i.Interpret(`{"reply":"ok","action":"none"}`, tc.message)
		if dec.PreferredDate != tc.want {
			t.Fatalf("message %q: expected date %q, got %q", tc.message, tc.want, dec.PreferredDate)
		}
	}
}

func TestBookingWithoutDateDemotedToAskForDay(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	dec := i.Interpret(`{"reply":"Booking you in!","action":"book_callback","preferred_time_of_day":"morning"}`, "morning works")
	if dec.Action != models.ActionAskForDay {
		t.Fatalf("expected demotion to ask_for_day, got %q", dec.Action)
	}
}

func TestUnparsableModelDateFallsBackToMessage(t *testing.T) {
	i := testInterpreter(t, fixedNow)

	dec := i.Interpret(`{"reply":"ok","action":"book_callback","preferred_date_iso":"next week sometime","preferred_time_of_day":"afternoon"}`, "tomorrow then")
	if dec.PreferredDate != "2025-06-03" {
		t.Fatalf("expected message-derived date, got %q", dec.PreferredDate)
	}
	if dec.Action != models.ActionBookCallback {
		t.Fatalf("expected booking kept with resolvable date, got %q", dec.Action)
	}
}

func TestWindowContains(t *testing.T) {
	cases := []struct {
		window models.Window
		hour   int
		want   bool
	}{
		{models.WindowMorning, 9, true},
		{models.WindowMorning, 12, false},
		{models.WindowAfternoon, 13, true},
		{models.WindowAfternoon, 17, false},
		{models.WindowEvening, 17, true},
		{models.WindowEvening, 16, false},
		{models.WindowNone, 10, false},
	}
	for _, tc := range cases {
		if got := tc.window.Contains(tc.hour); got != tc.want {
			t.Fatalf("window %q hour %d: expected %v, got %v", tc.window, tc.hour, tc.want, got)
		}
	}
}
