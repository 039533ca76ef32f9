package session

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// memoryStore keeps session state in a mutex-guarded map. Suitable for a
// single-node deployment and for tests; the mutex makes Redeem an atomic
// check-and-set.
type memoryStore struct {
	mu    sync.Mutex
	state map[string]State
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore() Store {
	return &memoryStore{
		state: make(map[string]State),
	}
}

func (s *memoryStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[sessionID], nil
}

func (s *memoryStore) ReplaceCode(_ context.Context, sessionID, code string, issuedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state[sessionID]
	st.Code = code
	st.CodeIssuedAt = issuedAt
	st.CodeConsumed = false
	s.state[sessionID] = st
	return nil
}

func (s *memoryStore) Redeem(_ context.Context, sessionID, submitted string, now time.Time, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[sessionID]
	if !ok || !st.HasLiveCode(now, ttl) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(st.Code), []byte(submitted)) != 1 {
		return false, nil
	}

	st.CodeConsumed = true
	s.state[sessionID] = st
	return true, nil
}

func (s *memoryStore) SetUnlocked(_ context.Context, sessionID string, unlocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state[sessionID]
	st.DiagnosisUnlocked = unlocked
	s.state[sessionID] = st
	return nil
}

func (s *memoryStore) End(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.state, sessionID)
	return nil
}
