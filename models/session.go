package models

import "time"

// Turn is one entry in a customer's conversation history.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"content"`
}

// Session is a read-only snapshot of one customer's conversation state.
// Mutation goes through the session store's atomic operations only.
type Session struct {
	ContactID       string    `json:"contactId"`
	History         []Turn    `json:"history"` // chronological, bounded, oldest evicted first
	Booked          bool      `json:"booked"`  // monotonic false→true
	LastCustomerAt  time.Time `json:"lastCustomerAt"`
	NudgesSent      int       `json:"nudgesSent"`
	BookingInFlight bool      `json:"bookingInFlight"`
}
