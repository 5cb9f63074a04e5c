package store

import (
	"context"
	"sync"
	"time"

	"pulsebot/models"
)

// sessionState is the mutable record behind one contact id.
type sessionState struct {
	history        []models.Turn
	booked         bool
	inFlight       bool
	lastCustomerAt time.Time
	nudgesSent     int
}

// MemoryStore is the in-process session store for single-instance
// deployments. Sessions live for the lifetime of the process.
type MemoryStore struct {
	mu           sync.Mutex
	sessions     map[string]*sessionState
	historyLimit int
}

// NewMemoryStore creates a store that keeps at most historyLimit turns
// per contact, oldest evicted first.
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = 12
	}
	return &MemoryStore{
		sessions:     make(map[string]*sessionState),
		historyLimit: historyLimit,
	}
}

// session returns the state for id, creating it if needed. Caller must hold mu.
func (s *MemoryStore) session(id string) *sessionState {
	st, ok := s.sessions[id]
	if !ok {
		st = &sessionState{}
		s.sessions[id] = st
	}
	return st
}

func (s *MemoryStore) Get(_ context.Context, id string) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.session(id)
	hist := make([]models.Turn, len(st.history))
	copy(hist, st.history)
	return models.Session{
		ContactID:       id,
		History:         hist,
		Booked:          st.booked,
		LastCustomerAt:  st.lastCustomerAt,
		NudgesSent:      st.nudgesSent,
		BookingInFlight: st.inFlight,
	}
}

func (s *MemoryStore) AppendTurn(_ context.Context, id, role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.session(id)
	st.history = append(st.history, models.Turn{Role: role, Text: text})
	if over := len(st.history) - s.historyLimit; over > 0 {
		st.history = st.history[over:]
	}
	if role == "user" {
		st.lastCustomerAt = time.Now()
		st.nudgesSent = 0
	}
}

func (s *MemoryStore) MarkBooked(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).booked = true
}

func (s *MemoryStore) IsBooked(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(id).booked
}

func (s *MemoryStore) TryAcquireBookingLock(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.session(id)
	if st.inFlight {
		return false
	}
	st.inFlight = true
	return true
}

func (s *MemoryStore) ReleaseBookingLock(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).inFlight = false
}

func (s *MemoryStore) RecordNudge(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).nudgesSent++
}
