package handlers

import (
	"net/url"
	"testing"
)

func TestExtractEventNestedContact(t *testing.T) {
	body := []byte(`{
		"contact": {
			"id": "abc123",
			"firstName": "Dana",
			"lastName": "Reid",
			"phone": "+447700900123",
			"email": "dana@example.com",
			"locationId": "loc-9"
		},
		"message": "can you do friday",
		"customFields": {
			"services_interested_in": "full valet",
			"Vehicle Make and Model": "Audi A4"
		}
	}`)

	event := ExtractEvent(body)
	if event.Contact.ID != "abc123" {
		t.Fatalf("contact id = %q", event.Contact.ID)
	}
	if event.Contact.FirstName != "Dana" || event.Contact.Phone != "+447700900123" {
		t.Fatalf("contact fields: %+v", event.Contact)
	}
	if event.Message != "can you do friday" {
		t.Fatalf("message = %q", event.Message)
	}
	if event.CustomField["services_interested_in"] != "full valet" {
		t.Fatalf("custom fields: %v", event.CustomField)
	}
	if event.CustomField["Vehicle Make and Model"] != "Audi A4" {
		t.Fatalf("custom fields: %v", event.CustomField)
	}
}

func TestExtractEventFlatAliases(t *testing.T) {
	body := []byte(`{
		"contact_id": "flat-1",
		"first_name": "Ali",
		"phone_number": "+447700900456",
		"email_address": "ali@example.com",
		"body": "morning works",
		"custom_fields": {"vehicle_colour": "black"}
	}`)

	event := ExtractEvent(body)
	if event.Contact.ID != "flat-1" {
		t.Fatalf("contact id = %q", event.Contact.ID)
	}
	if event.Contact.Phone != "+447700900456" || event.Contact.Email != "ali@example.com" {
		t.Fatalf("contact fields: %+v", event.Contact)
	}
	if event.Message != "morning works" {
		t.Fatalf("message = %q", event.Message)
	}
	if event.CustomField["vehicle_colour"] != "black" {
		t.Fatalf("custom fields: %v", event.CustomField)
	}
}

func TestExtractEventAliasPrecedence(t *testing.T) {
	// When both the nested and the flat shape are present, nested wins.
	body := []byte(`{"contact": {"id": "nested"}, "contact_id": "flat", "conversation": {"message": "hi"}}`)
	event := ExtractEvent(body)
	if event.Contact.ID != "nested" {
		t.Fatalf("expected nested id to win, got %q", event.Contact.ID)
	}
	if event.Message != "hi" {
		t.Fatalf("message = %q", event.Message)
	}
}

func TestExtractEventMissingIdentity(t *testing.T) {
	event := ExtractEvent([]byte(`{"message": "hello?"}`))
	if event.Contact.ID != "" {
		t.Fatalf("expected empty id, got %q", event.Contact.ID)
	}
}

func TestExtractEventNonStringValuesIgnored(t *testing.T) {
	body := []byte(`{"contact": {"id": 42}, "contactId": "str-2", "customFields": {"year": 2019}}`)
	event := ExtractEvent(body)
	if event.Contact.ID != "str-2" {
		t.Fatalf("numeric id should be skipped in favour of the string alias, got %q", event.Contact.ID)
	}
	if _, ok := event.CustomField["year"]; ok {
		t.Fatal("numeric custom field should be dropped")
	}
}

func TestExtractFormEvent(t *testing.T) {
	form := url.Values{}
	form.Set("contact_id", "form-1")
	form.Set("first_name", "Jo")
	form.Set("phone", "+447700900789")
	form.Set("message", "evening please")

	event := ExtractFormEvent(form)
	if event.Contact.ID != "form-1" {
		t.Fatalf("contact id = %q", event.Contact.ID)
	}
	if event.Contact.FirstName != "Jo" || event.Contact.Phone != "+447700900789" {
		t.Fatalf("contact fields: %+v", event.Contact)
	}
	if event.Message != "evening please" {
		t.Fatalf("message = %q", event.Message)
	}
}
