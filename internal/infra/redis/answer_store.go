package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"live-quiz-service/internal/domain"
)

const answersKey = "quiz:answers"

// AnswerStore keeps answers in one hash keyed by "questionID|participantID".
// HSETNX is the uniqueness enforcement point.
type AnswerStore struct {
	client *redis.Client
}

func NewAnswerStore(client *redis.Client) *AnswerStore {
	return &AnswerStore{client: client}
}

func (s *AnswerStore) Insert(ctx context.Context, answer domain.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	created, err := s.client.HSetNX(ctx, answersKey, answer.QuestionID+"|"+answer.ParticipantID, data).Result()
	if err != nil {
		return fmt.Errorf("%w: insert answer: %w", domain.ErrPersistence, err)
	}
	if !created {
		return domain.ErrDuplicateSubmission
	}
	return nil
}

func (s *AnswerStore) List(ctx context.Context) ([]domain.Answer, error) {
	raw, err := s.client.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list answers: %w", domain.ErrPersistence, err)
	}
	answers := make([]domain.Answer, 0, len(raw))
	for field, value := range raw {
		var answer domain.Answer
		if err := json.Unmarshal([]byte(value), &answer); err != nil {
			return nil, fmt.Errorf("%w: decode answer %s: %w", domain.ErrPersistence, field, err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
