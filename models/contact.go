package models

import "strings"

// Contact carries the CRM contact fields needed to message a customer
// and to put their name on an appointment.
type Contact struct {
	ID         string `json:"id"` // CRM contact identifier; keys all per-customer state
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	LocationID string `json:"locationId,omitempty"`
}

// DisplayName returns the best available name for the contact.
func (c Contact) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name != "" {
		return name
	}
	if c.FullName != "" {
		return c.FullName
	}
	return "Pulse Customer"
}

// GreetingName is the short form used inside conversation context.
func (c Contact) GreetingName() string {
	if c.FirstName != "" {
		return c.FirstName
	}
	if c.FullName != "" {
		return c.FullName
	}
	return "there"
}
