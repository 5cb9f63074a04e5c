package handlers

import (
	"encoding/json"
	"net/url"

	"pulsebot/models"

	"github.com/tidwall/gjson"
)

// The CRM sends several payload shapes depending on which workflow fired
// the webhook. Extraction tries each known alias in order and keeps the
// first non-empty value.

func firstOf(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// ExtractEvent pulls contact identity, contact fields, the latest message
// and the survey custom fields out of a raw JSON webhook body.
func ExtractEvent(body []byte) models.InboundEvent {
	root := gjson.ParseBytes(body)

	contact := models.Contact{
		ID: firstOf(root,
			"contact.id", "contact.contactId",
			"contactDetails.id", "contactDetails.contactId",
			"contact_id", "contactId"),
		FirstName: firstOf(root, "contact.firstName", "contactDetails.firstName", "first_name"),
		LastName:  firstOf(root, "contact.lastName", "contactDetails.lastName", "last_name"),
		FullName:  firstOf(root, "contact.fullName", "contactDetails.fullName", "full_name"),
		Phone: firstOf(root,
			"contact.phone", "contactDetails.phone",
			"phone", "phone_number", "phoneNumber"),
		Email: firstOf(root,
			"contact.email", "contactDetails.email",
			"email", "email_address"),
		LocationID: firstOf(root,
			"contact.locationId", "contactDetails.locationId",
			"location.id", "locationId"),
	}

	event := models.InboundEvent{
		Contact: contact,
		Message: firstOf(root, "message", "body", "conversation.message"),
	}

	for _, key := range []string{"custom", "customFields", "custom_fields"} {
		fields := root.Get(key)
		if !fields.IsObject() {
			continue
		}
		event.CustomField = make(map[string]string)
		fields.ForEach(func(k, v gjson.Result) bool {
			if v.Type == gjson.String {
				event.CustomField[k.String()] = v.String()
			}
			return true
		})
		break
	}

	return event
}

// ExtractFormEvent handles form-encoded deliveries, which arrive flat. The
// values are lifted into a JSON object and run through the same extractor.
func ExtractFormEvent(form url.Values) models.InboundEvent {
	flat := make(map[string]string, len(form))
	for key := range form {
		if v := form.Get(key); v != "" {
			flat[key] = v
		}
	}
	body, err := json.Marshal(flat)
	if err != nil {
		return models.InboundEvent{}
	}
	return ExtractEvent(body)
}
