package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"live-quiz-service/internal/domain"
)

func TestAnswerStoreEnforcesUniqueness(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAnswerStore(newClient(mr))

	first := domain.Answer{
		ID:              "a1",
		QuestionID:      "q1",
		RoundID:         "r1",
		ParticipantID:   "e1",
		ParticipantName: "Alice",
		Answer:          "4",
		IsCorrect:       true,
		TimeTaken:       2.5,
		SubmittedAt:     time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC),
	}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := first
	second.ID = "a2"
	second.Answer = "5"
	second.IsCorrect = false
	if err := store.Insert(ctx, second); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}

	other := first
	other.ID = "a3"
	other.ParticipantID = "e2"
	if err := store.Insert(ctx, other); err != nil {
		t.Fatalf("insert other participant: %v", err)
	}

	answers, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	for _, answer := range answers {
		if answer.ParticipantID == "e1" && (answer.ID != "a1" || answer.Answer != "4" || !answer.SubmittedAt.Equal(first.SubmittedAt)) {
			t.Fatalf("expected first answer untouched, got %+v", answer)
		}
	}
}
