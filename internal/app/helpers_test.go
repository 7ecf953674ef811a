package app_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

type harness struct {
	service      *app.QuizService
	activations  *memory.ActivationStore
	answers      *memory.AnswerStore
	participants *memory.ParticipantStore
	events       chan domain.Event
	clock        *clockwork.FakeClock
}

func newHarness(t *testing.T, timeLimit time.Duration) *harness {
	t.Helper()
	h := &harness{
		activations:  memory.NewActivationStore(),
		answers:      memory.NewAnswerStore(),
		participants: memory.NewParticipantStore(),
		events:       make(chan domain.Event, 256),
		clock:        clockwork.NewFakeClock(),
	}
	stores := app.Stores{
		Rounds:       memory.NewRoundCatalog(memory.NewStaticRoundLoader(sampleRounds()), time.Minute),
		Activations:  h.activations,
		Answers:      h.answers,
		Participants: h.participants,
	}
	h.service = app.NewQuizService(stores, app.BroadcasterFunc(func(event domain.Event) {
		h.events <- event
	}), app.Options{
		TimeLimit: timeLimit,
		Tick:      time.Second,
		Clock:     h.clock,
	})
	t.Cleanup(h.service.Close)
	return h
}

func expectEvent(t *testing.T, events <-chan domain.Event, eventType string) domain.Event {
	t.Helper()
	select {
	case event := <-events:
		if event.Type != eventType {
			t.Fatalf("expected %s event, got %s (%+v)", eventType, event.Type, event.Payload)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", eventType)
	}
	return domain.Event{}
}

func expectNoEvent(t *testing.T, events <-chan domain.Event) {
	t.Helper()
	select {
	case event := <-events:
		t.Fatalf("expected no event, got %s (%+v)", event.Type, event.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func sampleRounds() []domain.Round {
	return []domain.Round{
		{
			ID:     "r1",
			Number: 1,
			Questions: []domain.Question{
				{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Correct: "4"},
				{ID: "q2", Text: "What is the capital of France?", Options: []string{"Paris", "London", "Rome", "Berlin"}, Correct: "Paris"},
			},
		},
		{
			ID:     "r2",
			Number: 2,
			Questions: []domain.Question{
				{ID: "q3", Text: "What color is the sky?", Options: []string{"Blue", "Red", "Green", "Yellow"}, Correct: "Blue"},
				{ID: "q4", Text: "What is the largest ocean?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, Correct: "Pacific"},
			},
		},
	}
}
