package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"live-quiz-service/internal/domain"
)

func TestSubmitAnswerScoresExactMatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	correct, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{
		QuestionID: "q2", ParticipantID: "e1", ParticipantName: "Alice", Answer: "Paris", TimeTaken: 3.5,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !correct {
		t.Fatalf("expected Paris to be correct")
	}

	correct, err = h.service.SubmitAnswer(ctx, domain.AnswerSubmission{
		QuestionID: "q2", ParticipantID: "e2", ParticipantName: "Bob", Answer: "paris", TimeTaken: 2,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if correct {
		t.Fatalf("expected case-mismatched answer to be wrong")
	}

	answers, _ := h.answers.List(ctx)
	if len(answers) != 2 {
		t.Fatalf("expected 2 stored answers, got %d", len(answers))
	}
	if answers[0].RoundID != "r1" || answers[0].TimeTaken != 3.5 || !answers[0].IsCorrect || answers[0].SubmittedAt.IsZero() {
		t.Fatalf("unexpected stored answer %+v", answers[0])
	}
}

func TestSubmitAnswerTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	submission := domain.AnswerSubmission{QuestionID: "q1", ParticipantID: "e1", ParticipantName: "Alice", Answer: "4", TimeTaken: 1}
	if _, err := h.service.SubmitAnswer(ctx, submission); err != nil {
		t.Fatalf("submit: %v", err)
	}
	original, _ := h.answers.List(ctx)

	submission.Answer = "5"
	if _, err := h.service.SubmitAnswer(ctx, submission); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}
	after, _ := h.answers.List(ctx)
	if len(after) != 1 || after[0] != original[0] {
		t.Fatalf("expected original answer unchanged, got %+v", after)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	if _, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "nope", ParticipantID: "e1", Answer: "4"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "q1", Answer: "4"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "q1", ParticipantID: "e1", TimeTaken: -1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative time, got %v", err)
	}
	if answers, _ := h.answers.List(ctx); len(answers) != 0 {
		t.Fatalf("expected nothing stored, got %+v", answers)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	var g errgroup.Group
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("e%d", i)
		g.Go(func() error {
			_, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "q1", ParticipantID: id, Answer: "4"})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("distinct participants must all succeed: %v", err)
	}

	var successes, duplicates atomic.Int32
	var same errgroup.Group
	for i := 0; i < 20; i++ {
		same.Go(func() error {
			_, err := h.service.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "q2", ParticipantID: "e0", Answer: "Paris"})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrDuplicateSubmission):
				duplicates.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := same.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if successes.Load() != 1 || duplicates.Load() != 19 {
		t.Fatalf("expected exactly one success, got %d successes and %d duplicates", successes.Load(), duplicates.Load())
	}

	answers, _ := h.answers.List(ctx)
	if len(answers) != 41 {
		t.Fatalf("expected 41 stored answers, got %d", len(answers))
	}
}
