package memory

import (
	"context"
	"sync"
)

// ActivationStore is an in-memory implementation of app.ActivationStore.
// A single slot holds the live pair, so two active questions cannot exist.
type ActivationStore struct {
	mu      sync.RWMutex
	roundID string
	index   int
	active  bool
}

func NewActivationStore() *ActivationStore {
	return &ActivationStore{}
}

func (s *ActivationStore) Activate(_ context.Context, roundID string, questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundID = roundID
	s.index = questionIndex
	s.active = true
	return nil
}

func (s *ActivationStore) Deactivate(_ context.Context, roundID string, questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active && s.roundID == roundID && s.index == questionIndex {
		s.active = false
	}
	return nil
}

func (s *ActivationStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}

// Active reports the live pair, if any.
func (s *ActivationStore) Active(_ context.Context) (string, int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return "", 0, false, nil
	}
	return s.roundID, s.index, true, nil
}
