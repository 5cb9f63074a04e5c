package cron

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"pulsebot/config"
	"pulsebot/models"
	"pulsebot/services/decision"
	"pulsebot/services/tasks"
	"pulsebot/store"

	"github.com/hibiken/asynq"
)

type recordingChannel struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (r *recordingChannel) Send(_ context.Context, _ models.Contact, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, text)
	return nil
}

func (r *recordingChannel) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

func followupTask(t *testing.T, contactID string, scheduledAt time.Time) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(models.FollowupPayload{
		ContactID:   contactID,
		Contact:     models.Contact{ID: contactID, FirstName: "Sam"},
		ScheduledAt: scheduledAt.Unix(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(tasks.TypeSendFollowup, payload)
}

func TestMain(m *testing.M) {
	config.AppConfig.MessageTimeoutSec = 15
	config.AppConfig.FollowupDelayMin = 60
	m.Run()
}

func TestFollowupSendsFirstNudge(t *testing.T) {
	st := store.NewMemoryStore(12)
	ch := &recordingChannel{}
	handler := handleFollowupTask(st, ch, nil)

	scheduledAt := time.Now().Add(-time.Hour)
	st.AppendTurn(context.Background(), "c1", "assistant", "What day works best for you?")

	if err := handler(context.Background(), followupTask(t, "c1", scheduledAt)); err != nil {
		t.Fatalf("handler: %v", err)
	}

	msgs := ch.sent()
	if len(msgs) != 1 || msgs[0] != decision.Nudges[0] {
		t.Fatalf("expected first nudge, got %v", msgs)
	}
	sess := st.Get(context.Background(), "c1")
	if sess.NudgesSent != 1 {
		t.Fatalf("nudge count = %d", sess.NudgesSent)
	}
}

func TestFollowupSkipsBookedContact(t *testing.T) {
	st := store.NewMemoryStore(12)
	ch := &recordingChannel{}
	handler := handleFollowupTask(st, ch, nil)

	st.MarkBooked(context.Background(), "c1")
	if err := handler(context.Background(), followupTask(t, "c1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(ch.sent()) != 0 {
		t.Fatalf("booked contact must not be nudged, got %v", ch.sent())
	}
}

func TestFollowupSupersededByCustomerReply(t *testing.T) {
	st := store.NewMemoryStore(12)
	ch := &recordingChannel{}
	handler := handleFollowupTask(st, ch, nil)

	scheduledAt := time.Now().Add(-time.Hour)
	// The customer spoke after the nudge was queued.
	st.AppendTurn(context.Background(), "c1", "user", "sorry, got busy")

	if err := handler(context.Background(), followupTask(t, "c1", scheduledAt)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(ch.sent()) != 0 {
		t.Fatalf("fresh customer message must cancel the nudge, got %v", ch.sent())
	}
}

func TestFollowupStopsAfterAllNudges(t *testing.T) {
	st := store.NewMemoryStore(12)
	ch := &recordingChannel{}
	handler := handleFollowupTask(st, ch, nil)

	scheduledAt := time.Now().Add(-time.Hour)
	for range decision.Nudges {
		st.RecordNudge(context.Background(), "c1")
	}

	if err := handler(context.Background(), followupTask(t, "c1", scheduledAt)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(ch.sent()) != 0 {
		t.Fatalf("all nudges already sent, got %v", ch.sent())
	}
}

func TestFollowupDeliveryFailureRetriable(t *testing.T) {
	st := store.NewMemoryStore(12)
	ch := &recordingChannel{err: context.DeadlineExceeded}
	handler := handleFollowupTask(st, ch, nil)

	err := handler(context.Background(), followupTask(t, "c1", time.Now().Add(-time.Hour)))
	if err == nil {
		t.Fatal("delivery failure should surface for the queue to retry")
	}
	if st.Get(context.Background(), "c1").NudgesSent != 0 {
		t.Fatal("failed delivery must not consume a nudge")
	}
}
