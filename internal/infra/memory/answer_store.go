package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// AnswerStore is an append-only, in-memory implementation of app.AnswerRepository.
type AnswerStore struct {
	mu      sync.RWMutex
	answers []domain.Answer
	seen    map[answerKey]struct{}
}

type answerKey struct {
	questionID    string
	participantID string
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{seen: make(map[answerKey]struct{})}
}

func (s *AnswerStore) Insert(_ context.Context, answer domain.Answer) error {
	key := answerKey{questionID: answer.QuestionID, participantID: answer.ParticipantID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return domain.ErrDuplicateSubmission
	}
	s.seen[key] = struct{}{}
	s.answers = append(s.answers, answer)
	return nil
}

// List returns a copy of every stored answer in insertion order.
func (s *AnswerStore) List(_ context.Context) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := make([]domain.Answer, len(s.answers))
	copy(answers, s.answers)
	return answers, nil
}
