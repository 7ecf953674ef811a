package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

// AnswerIntake records at most one answer per (question, participant).
type AnswerIntake struct {
	rounds  RoundCatalog
	answers AnswerRepository
	clock   clockwork.Clock
}

func NewAnswerIntake(rounds RoundCatalog, answers AnswerRepository, opts Options) *AnswerIntake {
	opts = opts.withDefaults()
	return &AnswerIntake{rounds: rounds, answers: answers, clock: opts.Clock}
}

// SubmitAnswer scores the submission by exact match and persists it. The store's
// uniqueness constraint decides duplicates, so concurrent submissions for one
// pair resolve to a single success.
func (a *AnswerIntake) SubmitAnswer(ctx context.Context, submission domain.AnswerSubmission) (bool, error) {
	if submission.QuestionID == "" || submission.ParticipantID == "" {
		return false, fmt.Errorf("%w: questionId and participantId are required", domain.ErrInvalidInput)
	}
	if submission.TimeTaken < 0 {
		return false, fmt.Errorf("%w: negative timeTaken", domain.ErrInvalidInput)
	}

	rounds, err := a.rounds.ListRounds(ctx)
	if err != nil {
		return false, err
	}
	round, question, ok := domain.FindQuestion(rounds, submission.QuestionID)
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, submission.QuestionID)
	}

	correct := question.Correct == submission.Answer
	answer := domain.Answer{
		ID:              uuid.NewString(),
		QuestionID:      question.ID,
		RoundID:         round.ID,
		ParticipantID:   submission.ParticipantID,
		ParticipantName: submission.ParticipantName,
		Answer:          submission.Answer,
		IsCorrect:       correct,
		TimeTaken:       submission.TimeTaken,
		SubmittedAt:     a.clock.Now(),
	}
	if err := a.answers.Insert(ctx, answer); err != nil {
		return false, err
	}

	log.Debug().
		Str("question_id", question.ID).
		Str("participant_id", submission.ParticipantID).
		Bool("correct", correct).
		Msg("answer recorded")
	return correct, nil
}
