package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// ParticipantStore is an in-memory implementation of app.ParticipantRepository.
type ParticipantStore struct {
	mu           sync.RWMutex
	participants map[string]domain.Participant
}

func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{participants: make(map[string]domain.Participant)}
}

func (s *ParticipantStore) Create(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[participant.EmployeeID]; ok {
		return domain.ErrDuplicateParticipant
	}
	s.participants[participant.EmployeeID] = participant
	return nil
}

func (s *ParticipantStore) Get(_ context.Context, employeeID string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[employeeID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return participant, nil
}
