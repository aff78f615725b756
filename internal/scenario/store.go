package scenario

import (
	"context"
	"errors"
	"sync"

	"ticket-bot/internal/models"
)

var ErrStoreFailed = errors.New("SESSION_STORE_FAILED")

// SessionStore keeps at most one UserState per user.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.UserState, bool, error)
	Set(ctx context.Context, userID string, state *models.UserState) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]models.UserState
}

// NewMemoryStore returns an empty process-local store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]models.UserState)}
}

// Get returns a copy; changes are only visible after Set.
func (s *MemoryStore) Get(_ context.Context, userID string) (*models.UserState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		return nil, false, nil
	}
	st.Context.CandidateFlights = copyFlights(st.Context.CandidateFlights)
	return &st, true, nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, state *models.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *state
	st.Context.CandidateFlights = copyFlights(st.Context.CandidateFlights)
	s.states[userID] = st
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
	return nil
}

// Len is the number of users with a stored state.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func copyFlights(in map[int64]models.Flight) map[int64]models.Flight {
	if in == nil {
		return nil
	}
	out := make(map[int64]models.Flight, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
