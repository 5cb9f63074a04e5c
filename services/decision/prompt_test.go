package decision

import (
	"strings"
	"testing"

	"pulsebot/models"
)

func TestBuildContextTextWithMessage(t *testing.T) {
	event := models.InboundEvent{
		Contact: models.Contact{ID: "c1", FirstName: "Dave"},
		Message: "how much for a full valet?",
		CustomField: map[string]string{
			"vehicle_make_model": "BMW M3",
			"Vehicle Colour":     "black",
			"vehicle_year":       "2021",
		},
	}

	text := BuildContextText(event)
	if !strings.Contains(text, "Customer name: Dave.") {
		t.Fatalf("missing customer name: %q", text)
	}
	if !strings.Contains(text, "2021 BMW M3 in black") {
		t.Fatalf("missing vehicle line: %q", text)
	}
	if !strings.Contains(text, "Latest customer message: how much for a full valet?") {
		t.Fatalf("missing latest message: %q", text)
	}
	if strings.Contains(text, "no customer message yet") {
		t.Fatalf("compliance line should not appear with a message: %q", text)
	}
}

func TestBuildContextTextNoMessageYet(t *testing.T) {
	event := models.InboundEvent{
		Contact: models.Contact{ID: "c1"},
	}

	text := BuildContextText(event)
	if !strings.Contains(text, "There is no customer message yet.") {
		t.Fatalf("expected compliance line, got %q", text)
	}
	if !strings.Contains(text, "Customer name: there.") {
		t.Fatalf("expected placeholder name, got %q", text)
	}
	if !strings.Contains(text, "unknown year unknown model in unknown colour") {
		t.Fatalf("expected unknown vehicle placeholders, got %q", text)
	}
}

func TestCustomFieldAliasesBothCasings(t *testing.T) {
	snake := map[string]string{"services_interested_in": "ceramic coating"}
	title := map[string]string{"Services Interested In": "ceramic coating"}

	for _, fields := range []map[string]string{snake, title} {
		text := BuildContextText(models.InboundEvent{
			Contact:     models.Contact{ID: "c1"},
			Message:     "hi",
			CustomField: fields,
		})
		if !strings.Contains(text, "Services selected / interested in: ceramic coating.") {
			t.Fatalf("alias lookup failed for %v: %q", fields, text)
		}
	}
}
