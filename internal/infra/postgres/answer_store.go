package postgres

import (
	"context"

	"github.com/uptrace/bun"
	"live-quiz-service/internal/domain"
)

// AnswerStore appends answers to the answers table. The
// (question_id, participant_id) constraint rejects repeats.
type AnswerStore struct {
	db *bun.DB
}

func NewAnswerStore(db *bun.DB) *AnswerStore {
	return &AnswerStore{db: db}
}

func (s *AnswerStore) Insert(ctx context.Context, answer domain.Answer) error {
	model := answerFromDomain(answer)
	if _, err := s.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission
		}
		return persistence("insert answer", err)
	}
	return nil
}

func (s *AnswerStore) List(ctx context.Context) ([]domain.Answer, error) {
	var models []answerModel
	if err := s.db.NewSelect().Model(&models).Order("submitted_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, persistence("list answers", err)
	}
	answers := make([]domain.Answer, 0, len(models))
	for _, m := range models {
		answers = append(answers, m.toDomain())
	}
	return answers, nil
}
