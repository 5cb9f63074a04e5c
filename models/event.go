package models

// InboundEvent is one webhook delivery after extraction: who spoke, what
// they said, and the survey context the CRM attached to them.
type InboundEvent struct {
	EventID     string            `json:"eventId"` // assigned per delivery, for log correlation
	Contact     Contact           `json:"contact"`
	Message     string            `json:"message,omitempty"` // latest customer text, empty on contact-created events
	CustomField map[string]string `json:"custom,omitempty"`  // normalized survey fields
}

// Appointment is what the calendar sink is asked to create.
type Appointment struct {
	CalendarID string    `json:"calendarId"`
	LocationID string    `json:"locationId"`
	StartTime  string    `json:"selectedSlot"` // ISO-8601 local time with offset
	Timezone   string    `json:"selectedTimezone"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
}

// FollowupPayload is carried by a scheduled nudge task.
type FollowupPayload struct {
	ContactID   string  `json:"contactId"`
	Contact     Contact `json:"contact"`
	ScheduledAt int64   `json:"scheduledAt"` // unix seconds; stale if the customer spoke after this
	Sequence    int     `json:"sequence"`    // 1 = first nudge, 2 = second
}
