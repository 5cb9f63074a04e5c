package booking

import (
	"context"
	"fmt"
	"time"

	"pulsebot/models"
	"pulsebot/services/decision"
	"pulsebot/utils"

	"go.uber.org/zap"
)

// Replies owned by the orchestrator. Confirmation text is deliberately not
// sourced from the decision service: the customer is told a booking exists
// only after the calendar has confirmed it.
const (
	askDayReply  = "What day works best for you?"
	askTimeReply = "Would morning or afternoon suit you better?"
	declineReply = "That slot's not looking available I'm afraid. Could you do a different day or time?"
)

func confirmationReply(start time.Time) string {
	return fmt.Sprintf("Perfect, you're booked in for %s. The team will give you a call then. 👍",
		start.Format("Monday 2 January at 3:04pm"))
}

// HandleEvent drives one webhook delivery through the full pipeline.
func (o *DefaultOrchestrator) HandleEvent(ctx context.Context, event models.InboundEvent) error {
	id := event.Contact.ID
	if id == "" {
		return NewInputError("missing contact id on inbound event")
	}
	logger := utils.GetLogger().With(
		zap.String("contactId", id),
		zap.String("eventId", event.EventID),
	)

	// Booked is absorbing: short-circuit before the decision service is
	// even consulted, so a chatty customer cannot re-trigger a booking.
	if o.Store.IsBooked(ctx, id) {
		logger.Debug("contact already booked, ignoring event")
		return nil
	}

	sess := o.Store.Get(ctx, id)
	contextText := decision.BuildContextText(event)

	dctx, cancel := context.WithTimeout(ctx, o.DecisionTimeout)
	dec := o.Decisions.Decide(dctx, id, sess.History, contextText, event.Message)
	cancel()

	o.Store.AppendTurn(ctx, id, "user", contextText)
	o.Store.AppendTurn(ctx, id, "assistant", dec.Reply)

	// A real customer message re-arms the quiet-period follow-up.
	if event.Message != "" && o.Followups != nil {
		if err := o.Followups.ScheduleFollowup(event.Contact, time.Now().Add(o.FollowupDelay)); err != nil {
			logger.Warn("failed to schedule follow-up", zap.Error(err))
		}
	}

	if dec.Action == models.ActionBookCallback {
		if dec.Window == models.WindowNone {
			// Booking intent without a window: clarify rather than guess.
			reply := dec.Reply
			if reply == "" {
				reply = askTimeReply
			}
			o.send(ctx, event.Contact, reply, logger)
			return nil
		}
		return o.attemptBooking(ctx, event.Contact, dec, logger)
	}

	if dec.Action == models.ActionAskForDay && dec.Reply == "" {
		// The interpreter demotes undated booking intents here; make sure
		// the customer still gets asked.
		o.send(ctx, event.Contact, askDayReply, logger)
		return nil
	}

	if dec.Reply != "" {
		o.send(ctx, event.Contact, dec.Reply, logger)
	}
	return nil
}

// attemptBooking runs one serialized booking attempt. The per-contact lock
// is held from here until both the slot lookup and the appointment creation
// have resolved; every exit path releases it.
func (o *DefaultOrchestrator) attemptBooking(ctx context.Context, contact models.Contact, dec models.Decision, logger *zap.Logger) error {
	id := contact.ID

	if !o.Store.TryAcquireBookingLock(ctx, id) {
		// A concurrent delivery is already mid-attempt; it will produce the
		// customer-facing outcome, so this one stays silent.
		logger.Info("booking attempt already in flight, dropping duplicate")
		return nil
	}
	defer o.Store.ReleaseBookingLock(ctx, id)

	// The flag may have flipped between the short-circuit check and the
	// lock acquisition.
	if o.Store.IsBooked(ctx, id) {
		logger.Info("contact booked while waiting, dropping attempt")
		return nil
	}

	start, ok := o.resolveStart(ctx, dec, logger)
	if !ok {
		logger.Info("no slot available", zap.String("date", dec.PreferredDate),
			zap.String("window", string(dec.Window)))
		o.send(ctx, contact, declineReply, logger)
		return nil
	}

	appt := models.Appointment{
		CalendarID: o.CalendarID,
		LocationID: o.LocationID,
		StartTime:  start.Format(time.RFC3339),
		Timezone:   o.Timezone.String(),
		Name:       contact.DisplayName(),
		Email:      contact.Email,
		Phone:      contact.Phone,
	}

	cctx, cancel := context.WithTimeout(ctx, o.CalendarTimeout)
	err := o.Sink.CreateAppointment(cctx, appt)
	cancel()
	if err != nil {
		// A sink timeout or refusal is a decline, not a crash; the lock
		// release in the deferred call leaves the contact free to retry.
		logger.Warn("appointment creation failed", zap.Error(err))
		o.send(ctx, contact, declineReply, logger)
		return nil
	}

	o.Store.MarkBooked(ctx, id)
	logger.Info("callback booked", zap.String("start", appt.StartTime))
	o.send(ctx, contact, confirmationReply(start), logger)
	return nil
}

// resolveStart picks the concrete start time for the attempt. Live slots
// from the directory are authoritative; the fixed hour mapping applies only
// when the directory itself cannot be reached.
func (o *DefaultOrchestrator) resolveStart(ctx context.Context, dec models.Decision, logger *zap.Logger) (time.Time, bool) {
	cctx, cancel := context.WithTimeout(ctx, o.CalendarTimeout)
	slots, err := o.Slots.FreeSlots(cctx, o.CalendarID, dec.PreferredDate)
	cancel()

	if err != nil {
		logger.Warn("slot directory unavailable, using window default hour", zap.Error(err))
		day, perr := time.ParseInLocation("2006-01-02", dec.PreferredDate, o.Timezone)
		if perr != nil {
			return time.Time{}, false
		}
		return day.Add(time.Duration(dec.Window.FallbackHour()) * time.Hour), true
	}

	return FirstFit(slots, dec.Window)
}

// send forwards text to the customer. Delivery failures are logged and
// dropped: the message channel never affects booking state.
func (o *DefaultOrchestrator) send(ctx context.Context, contact models.Contact, text string, logger *zap.Logger) {
	if text == "" {
		return
	}
	mctx, cancel := context.WithTimeout(ctx, o.MessageTimeout)
	defer cancel()
	if err := o.Channel.Send(mctx, contact, text); err != nil {
		logger.Error("message delivery failed", zap.Error(err))
	}
}
