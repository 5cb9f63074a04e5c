package booking

import (
	"context"
	"time"

	"pulsebot/models"
	"pulsebot/services/calendar"
	"pulsebot/services/decision"
	"pulsebot/services/messaging"
	"pulsebot/store"
)

// FollowupScheduler enqueues a delayed nudge check for a contact. Optional;
// a nil scheduler disables follow-ups.
type FollowupScheduler interface {
	ScheduleFollowup(contact models.Contact, fireAt time.Time) error
}

// Orchestrator consumes one inbound event end to end: decision, turn
// logging, slot resolution, serialized booking, and the outbound reply.
type Orchestrator interface {
	HandleEvent(ctx context.Context, event models.InboundEvent) error
}

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	Store     store.SessionStore
	Decisions decision.Service
	Slots     calendar.SlotDirectory
	Sink      calendar.AppointmentSink
	Channel   messaging.MessageChannel
	Followups FollowupScheduler

	CalendarID string
	LocationID string
	Timezone   *time.Location

	DecisionTimeout time.Duration
	CalendarTimeout time.Duration
	MessageTimeout  time.Duration
	FollowupDelay   time.Duration
}
