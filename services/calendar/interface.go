package calendar

import (
	"context"
	"time"

	"pulsebot/models"
)

// SlotDirectory lists the bookable start times of a calendar on one date,
// in chronological order. An empty list means the day is fully booked.
type SlotDirectory interface {
	FreeSlots(ctx context.Context, calendarID, date string) ([]time.Time, error)
}

// AppointmentSink creates the callback appointment. Success or failure only,
// no partial states.
type AppointmentSink interface {
	CreateAppointment(ctx context.Context, appt models.Appointment) error
}
