package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestActivateThenActiveQuestionRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	active, err := h.service.ActivateQuestion(ctx, 2, 1)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if active.RoundID != "r2" || active.QuestionIndex != 1 || active.Question.ID != "q4" {
		t.Fatalf("unexpected activation %+v", active)
	}

	got, err := h.service.ActiveQuestion(ctx)
	if err != nil {
		t.Fatalf("active question: %v", err)
	}
	if got.RoundNumber != 2 || got.QuestionIndex != 1 || got.Question.ID != "q4" {
		t.Fatalf("expected round 2 question 1, got %+v", got)
	}
	if got.RemainingTime != 15 || got.TimeLimit != 15 {
		t.Fatalf("expected full countdown remaining, got %+v", got)
	}

	roundID, index, ok, _ := h.activations.Active(ctx)
	if !ok || roundID != "r2" || index != 1 {
		t.Fatalf("expected store to hold r2/1, got %s/%d active=%v", roundID, index, ok)
	}
}

func TestActivationBroadcastOmitsCorrectOption(t *testing.T) {
	h := newHarness(t, 15*time.Second)

	if _, err := h.service.ActivateQuestion(context.Background(), 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	event := expectEvent(t, h.events, domain.EventQuestionActivated)
	payload := event.Payload.(domain.QuestionActivated)
	if payload.RoundID != "r1" || payload.RoundNumber != 1 || payload.QuestionIndex != 0 || !payload.IsActive || payload.TimeLimit != 15 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"correct"`) {
		t.Fatalf("activation payload leaks the correct option: %s", raw)
	}
}

func TestActivateRejectsBadTargets(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15*time.Second)

	cases := []struct {
		round, index int
		want         error
	}{
		{0, 0, domain.ErrInvalidActivation},
		{1, -1, domain.ErrInvalidActivation},
		{9, 0, domain.ErrRoundNotFound},
		{1, 2, domain.ErrQuestionNotFound},
	}
	for _, tc := range cases {
		if _, err := h.service.ActivateQuestion(ctx, tc.round, tc.index); !errors.Is(err, tc.want) {
			t.Fatalf("activate(%d, %d): expected %v, got %v", tc.round, tc.index, tc.want, err)
		}
	}

	expectNoEvent(t, h.events)
	if _, _, ok, _ := h.activations.Active(ctx); ok {
		t.Fatalf("expected no persisted activation")
	}
	if _, err := h.service.ActiveQuestion(ctx); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected no active question, got %v", err)
	}
}

func TestCountdownTicksThenExpires(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 3*time.Second)

	if _, err := h.service.ActivateQuestion(ctx, 1, 1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, h.events, domain.EventQuestionActivated)

	for _, want := range []float64{2, 1} {
		h.clock.Advance(time.Second)
		update := expectEvent(t, h.events, domain.EventUpdateTimer).Payload.(domain.TimerUpdate)
		if update.RemainingTime != want || update.RoundNumber != 1 || update.QuestionIndex != 1 {
			t.Fatalf("expected %v remaining for 1/1, got %+v", want, update)
		}
	}

	h.clock.Advance(time.Second)
	timeUp := expectEvent(t, h.events, domain.EventTimeUp).Payload.(domain.TimeUp)
	if timeUp.RoundNumber != 1 || timeUp.QuestionIndex != 1 {
		t.Fatalf("unexpected timeUp %+v", timeUp)
	}
	if _, err := h.service.ActiveQuestion(ctx); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected question inactive after expiry, got %v", err)
	}
	if _, _, ok, _ := h.activations.Active(ctx); ok {
		t.Fatalf("expected persisted flag cleared")
	}

	h.clock.Advance(5 * time.Second)
	expectNoEvent(t, h.events)
}

func TestNewActivationCancelsPreviousCountdown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 3*time.Second)

	if _, err := h.service.ActivateQuestion(ctx, 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	h.clock.Advance(time.Second)
	expectEvent(t, h.events, domain.EventQuestionActivated)
	expectEvent(t, h.events, domain.EventUpdateTimer)

	if _, err := h.service.ActivateQuestion(ctx, 2, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, h.events, domain.EventQuestionActivated)

	// The first countdown would have expired two seconds from here.
	for i := 0; i < 2; i++ {
		h.clock.Advance(time.Second)
		update := expectEvent(t, h.events, domain.EventUpdateTimer).Payload.(domain.TimerUpdate)
		if update.RoundNumber != 2 {
			t.Fatalf("stale timer ticked: %+v", update)
		}
	}
	if active, err := h.service.ActiveQuestion(ctx); err != nil || active.RoundNumber != 2 {
		t.Fatalf("expected round 2 still active, got %+v err=%v", active, err)
	}

	h.clock.Advance(time.Second)
	timeUp := expectEvent(t, h.events, domain.EventTimeUp).Payload.(domain.TimeUp)
	if timeUp.RoundNumber != 2 {
		t.Fatalf("expected round 2 to expire, got %+v", timeUp)
	}
	expectNoEvent(t, h.events)
}

func TestConcurrentActivationsLeaveOneActive(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2*time.Second)

	var g errgroup.Group
	g.Go(func() error { _, err := h.service.ActivateQuestion(ctx, 1, 0); return err })
	g.Go(func() error { _, err := h.service.ActivateQuestion(ctx, 2, 1); return err })
	if err := g.Wait(); err != nil {
		t.Fatalf("activate: %v", err)
	}

	expectEvent(t, h.events, domain.EventQuestionActivated)
	last := expectEvent(t, h.events, domain.EventQuestionActivated).Payload.(domain.QuestionActivated)

	active, err := h.service.ActiveQuestion(ctx)
	if err != nil {
		t.Fatalf("active question: %v", err)
	}
	if active.RoundID != last.RoundID || active.QuestionIndex != last.QuestionIndex {
		t.Fatalf("active %+v does not match last broadcast %+v", active, last)
	}
	roundID, index, ok, _ := h.activations.Active(ctx)
	if !ok || roundID != last.RoundID || index != last.QuestionIndex {
		t.Fatalf("store holds %s/%d, expected %s/%d", roundID, index, last.RoundID, last.QuestionIndex)
	}

	rounds, err := h.service.ListRounds(ctx)
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	activeQuestions, activeRounds := 0, 0
	for _, round := range rounds {
		if round.IsActive {
			activeRounds++
		}
		for _, q := range round.Questions {
			if q.IsActive {
				activeQuestions++
			}
		}
	}
	if activeQuestions != 1 || activeRounds != 1 {
		t.Fatalf("expected exactly one active question and round, got %d/%d", activeQuestions, activeRounds)
	}

	h.clock.Advance(time.Second)
	expectEvent(t, h.events, domain.EventUpdateTimer)
	h.clock.Advance(time.Second)
	timeUp := expectEvent(t, h.events, domain.EventTimeUp).Payload.(domain.TimeUp)
	if timeUp.RoundNumber != last.RoundNumber || timeUp.QuestionIndex != last.QuestionIndex {
		t.Fatalf("expected only the surviving activation to expire, got %+v", timeUp)
	}
	expectNoEvent(t, h.events)
}

func TestActivationPersistenceFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	store := &flakyActivations{ActivationStore: memory.NewActivationStore()}
	events := make(chan domain.Event, 16)
	controller := app.NewSessionController(
		memory.NewRoundCatalog(memory.NewStaticRoundLoader(sampleRounds()), time.Minute),
		store,
		app.BroadcasterFunc(func(e domain.Event) { events <- e }),
		app.Options{TimeLimit: time.Minute},
	)
	defer controller.Close()

	if _, err := controller.ActivateQuestion(ctx, 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, events, domain.EventQuestionActivated)

	store.failActivate = true
	if _, err := controller.ActivateQuestion(ctx, 2, 0); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	expectNoEvent(t, events)

	active, err := controller.ActiveQuestion()
	if err != nil || active.RoundID != "r1" || active.QuestionIndex != 0 {
		t.Fatalf("expected r1/0 still active, got %+v err=%v", active, err)
	}
}

func TestExpiryStillFiresWhenDeactivationFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyActivations{ActivationStore: memory.NewActivationStore(), failDeactivate: true}
	events := make(chan domain.Event, 16)
	clock := clockwork.NewFakeClock()
	controller := app.NewSessionController(
		memory.NewRoundCatalog(memory.NewStaticRoundLoader(sampleRounds()), time.Minute),
		store,
		app.BroadcasterFunc(func(e domain.Event) { events <- e }),
		app.Options{TimeLimit: time.Second, Clock: clock},
	)
	defer controller.Close()

	if _, err := controller.ActivateQuestion(ctx, 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, events, domain.EventQuestionActivated)

	clock.Advance(time.Second)
	expectEvent(t, events, domain.EventTimeUp)
	if _, err := controller.ActiveQuestion(); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected controller to consider the question expired, got %v", err)
	}
	if store.deactivateCalls != 1 {
		t.Fatalf("expected a single deactivation attempt, got %d", store.deactivateCalls)
	}
}

func TestSlowDeactivationDoesNotBlockReaders(t *testing.T) {
	ctx := context.Background()
	store := &blockingActivations{
		ActivationStore: memory.NewActivationStore(),
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	events := make(chan domain.Event, 16)
	clock := clockwork.NewFakeClock()
	controller := app.NewSessionController(
		memory.NewRoundCatalog(memory.NewStaticRoundLoader(sampleRounds()), time.Minute),
		store,
		app.BroadcasterFunc(func(e domain.Event) { events <- e }),
		app.Options{TimeLimit: time.Second, Clock: clock},
	)
	defer controller.Close()

	if _, err := controller.ActivateQuestion(ctx, 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, events, domain.EventQuestionActivated)

	clock.Advance(time.Second)
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("expiry never reached the store")
	}

	readers := make(chan error, 1)
	go func() {
		if _, err := controller.ActiveQuestion(); !errors.Is(err, domain.ErrNoActiveQuestion) {
			readers <- fmt.Errorf("expected no active question, got %v", err)
			return
		}
		_, err := controller.ListRounds(ctx)
		readers <- err
	}()
	select {
	case err := <-readers:
		if err != nil {
			t.Fatalf("reader: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("readers blocked behind a slow deactivation")
	}

	activated := make(chan error, 1)
	go func() {
		_, err := controller.ActivateQuestion(ctx, 2, 0)
		activated <- err
	}()
	expectNoEvent(t, events)

	close(store.release)
	expectEvent(t, events, domain.EventTimeUp)
	expectEvent(t, events, domain.EventQuestionActivated)
	if err := <-activated; err != nil {
		t.Fatalf("activate after expiry: %v", err)
	}
	roundID, _, ok, _ := store.Active(ctx)
	if !ok || roundID != "r2" {
		t.Fatalf("expected r2 to stay active after the late deactivation, got %s active=%v", roundID, ok)
	}
}

func TestResetClearsActivation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 3*time.Second)

	if _, err := h.service.ActivateQuestion(ctx, 1, 0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	expectEvent(t, h.events, domain.EventQuestionActivated)
	if err := h.service.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, ok, _ := h.activations.Active(ctx); ok {
		t.Fatalf("expected store cleared")
	}

	h.clock.Advance(3 * time.Second)
	expectNoEvent(t, h.events)
}

func TestResetClearsActivationLeftByPreviousProcess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 3*time.Second)

	if err := h.activations.Activate(ctx, "r1", 1); err != nil {
		t.Fatalf("seed activation: %v", err)
	}
	if err := h.service.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, ok, _ := h.activations.Active(ctx); ok {
		t.Fatalf("expected stale activation cleared")
	}
	if _, err := h.service.ActiveQuestion(ctx); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected no active question, got %v", err)
	}
}

type flakyActivations struct {
	*memory.ActivationStore
	failActivate    bool
	failDeactivate  bool
	deactivateCalls int
}

func (f *flakyActivations) Activate(ctx context.Context, roundID string, questionIndex int) error {
	if f.failActivate {
		return errors.Join(domain.ErrPersistence, errors.New("write failed"))
	}
	return f.ActivationStore.Activate(ctx, roundID, questionIndex)
}

func (f *flakyActivations) Deactivate(ctx context.Context, roundID string, questionIndex int) error {
	f.deactivateCalls++
	if f.failDeactivate {
		return errors.Join(domain.ErrPersistence, errors.New("write failed"))
	}
	return f.ActivationStore.Deactivate(ctx, roundID, questionIndex)
}

type blockingActivations struct {
	*memory.ActivationStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingActivations) Deactivate(ctx context.Context, roundID string, questionIndex int) error {
	close(b.entered)
	<-b.release
	return b.ActivationStore.Deactivate(ctx, roundID, questionIndex)
}
