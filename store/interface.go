package store

import (
	"context"

	"pulsebot/models"
)

// SessionStore holds per-customer conversation state. It is the only shared
// mutable resource in the system; the lock primitives are the mechanism that
// keeps booking attempts serialized per contact, so they must be atomic
// across concurrent callers for the same id.
//
// Operations on an unknown id materialize a fresh session rather than
// erroring. Backend failures (Redis) are logged and degrade to empty state
// so the conversation always makes forward progress.
type SessionStore interface {
	// Get returns a snapshot of the session, creating an empty one if absent.
	Get(ctx context.Context, id string) models.Session

	// AppendTurn appends one turn to the bounded history. A "user" turn also
	// refreshes the customer's last-activity marker and resets the nudge count.
	AppendTurn(ctx context.Context, id, role, text string)

	// MarkBooked flips the terminal booked flag. Irreversible.
	MarkBooked(ctx context.Context, id string)

	// IsBooked reports whether the contact already has a confirmed callback.
	IsBooked(ctx context.Context, id string) bool

	// TryAcquireBookingLock succeeds only if no booking attempt is in flight
	// for the contact. Compare-and-set semantics.
	TryAcquireBookingLock(ctx context.Context, id string) bool

	// ReleaseBookingLock clears the in-flight flag. Must be called on every
	// exit path of a booking attempt.
	ReleaseBookingLock(ctx context.Context, id string)

	// RecordNudge counts one delivered follow-up nudge.
	RecordNudge(ctx context.Context, id string)
}
