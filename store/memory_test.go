package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreHistoryBound(t *testing.T) {
	const limit = 4
	s := NewMemoryStore(limit)
	ctx := context.Background()

	for i := 0; i < limit+5; i++ {
		s.AppendTurn(ctx, "c1", "user", fmt.Sprintf("msg-%d", i))
	}

	sess := s.Get(ctx, "c1")
	if len(sess.History) != limit {
		t.Fatalf("expected %d turns, got %d", limit, len(sess.History))
	}
	// Oldest-first order preserved: the survivors are the most recent N.
	for i, turn := range sess.History {
		want := fmt.Sprintf("msg-%d", 5+i)
		if turn.Text != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, turn.Text)
		}
	}
}

func TestMemoryStoreBookedIsMonotonic(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if s.IsBooked(ctx, "c1") {
		t.Fatal("fresh session should not be booked")
	}
	s.MarkBooked(ctx, "c1")
	if !s.IsBooked(ctx, "c1") {
		t.Fatal("expected booked after MarkBooked")
	}
	// Unknown ids materialize fresh, unbooked sessions.
	if s.IsBooked(ctx, "c2") {
		t.Fatal("separate contact should not be booked")
	}
}

func TestMemoryStoreLockCompareAndSet(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if !s.TryAcquireBookingLock(ctx, "c1") {
		t.Fatal("first acquire should succeed")
	}
	if s.TryAcquireBookingLock(ctx, "c1") {
		t.Fatal("second acquire should fail while lock held")
	}
	// Locks are per contact.
	if !s.TryAcquireBookingLock(ctx, "c2") {
		t.Fatal("lock for a different contact should succeed")
	}

	s.ReleaseBookingLock(ctx, "c1")
	if !s.TryAcquireBookingLock(ctx, "c1") {
		t.Fatal("acquire after release should succeed")
	}
}

func TestMemoryStoreLockUnderContention(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	winners := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAcquireBookingLock(ctx, "c1") {
				winners <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(winners)

	count := 0
	for range winners {
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
}

func TestMemoryStoreUserTurnResetsNudges(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	s.AppendTurn(ctx, "c1", "user", "hello")
	s.RecordNudge(ctx, "c1")
	s.RecordNudge(ctx, "c1")
	if got := s.Get(ctx, "c1").NudgesSent; got != 2 {
		t.Fatalf("expected 2 nudges recorded, got %d", got)
	}

	s.AppendTurn(ctx, "c1", "user", "sorry, was busy")
	sess := s.Get(ctx, "c1")
	if sess.NudgesSent != 0 {
		t.Fatalf("customer turn should reset nudges, got %d", sess.NudgesSent)
	}
	if sess.LastCustomerAt.IsZero() {
		t.Fatal("customer turn should stamp last activity")
	}
}
