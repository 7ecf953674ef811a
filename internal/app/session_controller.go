package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

const deactivateTimeout = 5 * time.Second

// SessionController is the single writer of "which question is live". Every
// activation, tick and expiry runs under mu, and timers carry the generation
// they were started for so a superseded countdown can never act. Store writes
// are ordered by storeMu, which is always taken before mu.
type SessionController struct {
	rounds      RoundCatalog
	store       ActivationStore
	broadcaster Broadcaster
	clock       clockwork.Clock
	timeLimit   time.Duration
	tick        time.Duration

	storeMu    sync.Mutex
	mu         sync.Mutex
	generation uint64
	active     *activation
}

type activation struct {
	round      domain.Round
	index      int
	generation uint64
	countdown  *Countdown
}

func NewSessionController(rounds RoundCatalog, store ActivationStore, broadcaster Broadcaster, opts Options) *SessionController {
	opts = opts.withDefaults()
	return &SessionController{
		rounds:      rounds,
		store:       store,
		broadcaster: broadcaster,
		clock:       opts.Clock,
		timeLimit:   opts.TimeLimit,
		tick:        opts.Tick,
	}
}

// ActivateQuestion makes question questionIndex of round roundNumber the only live
// question. On any error nothing changes and nothing is broadcast.
func (c *SessionController) ActivateQuestion(ctx context.Context, roundNumber, questionIndex int) (domain.ActiveQuestion, error) {
	if roundNumber <= 0 || questionIndex < 0 {
		return domain.ActiveQuestion{}, fmt.Errorf("%w: round %d question %d", domain.ErrInvalidActivation, roundNumber, questionIndex)
	}

	rounds, err := c.rounds.ListRounds(ctx)
	if err != nil {
		return domain.ActiveQuestion{}, err
	}
	round, ok := domain.FindRound(rounds, roundNumber)
	if !ok {
		return domain.ActiveQuestion{}, fmt.Errorf("%w: round %d", domain.ErrRoundNotFound, roundNumber)
	}
	if questionIndex >= len(round.Questions) {
		return domain.ActiveQuestion{}, fmt.Errorf("%w: round %d has no question %d", domain.ErrQuestionNotFound, roundNumber, questionIndex)
	}

	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Activate(ctx, round.ID, questionIndex); err != nil {
		return domain.ActiveQuestion{}, err
	}

	if c.active != nil {
		c.active.countdown.Cancel()
	}
	c.generation++
	gen := c.generation
	act := &activation{round: round, index: questionIndex, generation: gen}
	act.countdown = StartCountdown(c.clock, c.timeLimit, c.tick,
		func(remaining time.Duration) { c.onTick(gen, remaining) },
		func() { c.onExpire(gen) },
	)
	c.active = act

	question := round.Questions[questionIndex]
	c.broadcaster.Broadcast(domain.Event{
		Type: domain.EventQuestionActivated,
		Payload: domain.QuestionActivated{
			RoundID:       round.ID,
			RoundNumber:   round.Number,
			Question:      question.Public(),
			QuestionIndex: questionIndex,
			IsActive:      true,
			TimeLimit:     c.timeLimit.Seconds(),
		},
	})

	log.Info().
		Int("round_number", round.Number).
		Int("question_index", questionIndex).
		Str("question_id", question.ID).
		Uint64("generation", gen).
		Dur("time_limit", c.timeLimit).
		Msg("question activated")

	return c.activeLocked(), nil
}

// ActiveQuestion returns the live question or domain.ErrNoActiveQuestion.
func (c *SessionController) ActiveQuestion() (domain.ActiveQuestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.ActiveQuestion{}, domain.ErrNoActiveQuestion
	}
	return c.activeLocked(), nil
}

// ListRounds returns the catalog with active flags taken from the controller.
func (c *SessionController) ListRounds(ctx context.Context) ([]domain.Round, error) {
	catalog, err := c.rounds.ListRounds(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rounds := make([]domain.Round, len(catalog))
	for i, round := range catalog {
		questions := make([]domain.Question, len(round.Questions))
		copy(questions, round.Questions)
		round.Questions = questions
		round.IsActive = false
		for j := range round.Questions {
			round.Questions[j].IsActive = false
		}
		if c.active != nil && c.active.round.ID == round.ID {
			round.IsActive = true
			round.Questions[c.active.index].IsActive = true
		}
		rounds[i] = round
	}
	return rounds, nil
}

// Reset cancels any countdown and clears the persisted flags.
func (c *SessionController) Reset(ctx context.Context) error {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if reader, ok := c.store.(ActivationReader); ok {
		if roundID, index, live, err := reader.Active(ctx); err == nil && live {
			log.Info().Str("round_id", roundID).Int("question_index", index).Msg("clearing stale activation")
		}
	}
	return c.store.Clear(ctx)
}

// Close cancels any running countdown.
func (c *SessionController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *SessionController) stopLocked() {
	if c.active != nil {
		c.active.countdown.Cancel()
		c.active = nil
	}
	c.generation++
}

func (c *SessionController) onTick(gen uint64, remaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.generation != gen {
		return
	}
	c.broadcaster.Broadcast(domain.Event{
		Type: domain.EventUpdateTimer,
		Payload: domain.TimerUpdate{
			RoundNumber:   c.active.round.Number,
			QuestionIndex: c.active.index,
			RemainingTime: remaining.Seconds(),
		},
	})
}

// onExpire clears the live question under mu, then persists the
// deactivation holding only storeMu so readers are never stalled by the store.
// A new activation waits on storeMu, so timeUp always precedes it.
func (c *SessionController) onExpire(gen uint64) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	if c.active == nil || c.active.generation != gen {
		c.mu.Unlock()
		return
	}
	act := c.active
	c.active = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deactivateTimeout)
	defer cancel()
	// The countdown is over either way; a failed write is not retried.
	if err := c.store.Deactivate(ctx, act.round.ID, act.index); err != nil {
		log.Error().Err(err).
			Int("round_number", act.round.Number).
			Int("question_index", act.index).
			Msg("failed to persist question deactivation")
	}

	c.broadcaster.Broadcast(domain.Event{
		Type:    domain.EventTimeUp,
		Payload: domain.TimeUp{RoundNumber: act.round.Number, QuestionIndex: act.index},
	})
	log.Info().
		Int("round_number", act.round.Number).
		Int("question_index", act.index).
		Uint64("generation", gen).
		Msg("time is up")
}

func (c *SessionController) activeLocked() domain.ActiveQuestion {
	act := c.active
	return domain.ActiveQuestion{
		RoundID:       act.round.ID,
		RoundNumber:   act.round.Number,
		QuestionIndex: act.index,
		Question:      act.round.Questions[act.index].Public(),
		TimeLimit:     act.countdown.Duration().Seconds(),
		RemainingTime: act.countdown.Remaining().Seconds(),
	}
}
