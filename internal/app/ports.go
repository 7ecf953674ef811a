package app

import (
	"context"

	"live-quiz-service/internal/domain"
)

// RoundCatalog returns the seeded round definitions (content only, flags are owned by the SessionController).
type RoundCatalog interface {
	ListRounds(ctx context.Context) ([]domain.Round, error)
}

// ActivationStore persists which question is live.
type ActivationStore interface {
	// Activate clears every active flag and sets the target pair in one atomic step.
	Activate(ctx context.Context, roundID string, questionIndex int) error
	// Deactivate clears the pair only if it is still the active one.
	Deactivate(ctx context.Context, roundID string, questionIndex int) error
	// Clear drops every active flag.
	Clear(ctx context.Context) error
}

// ActivationReader is implemented by activation stores that can report the
// persisted live pair. Reset uses it to log state left by a previous process.
type ActivationReader interface {
	Active(ctx context.Context) (roundID string, questionIndex int, ok bool, err error)
}

// AnswerRepository is the append-only answer store. Insert must return
// domain.ErrDuplicateSubmission when (questionID, participantID) already exists.
type AnswerRepository interface {
	Insert(ctx context.Context, answer domain.Answer) error
	List(ctx context.Context) ([]domain.Answer, error)
}

// ParticipantRepository stores registered participants keyed by employee id.
type ParticipantRepository interface {
	Create(ctx context.Context, participant domain.Participant) error
	Get(ctx context.Context, employeeID string) (domain.Participant, error)
}

// Broadcaster fans an event out to every connected client. Delivery is best effort.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// Broadcasters sends each event to every member.
type Broadcasters []Broadcaster

func (b Broadcasters) Broadcast(event domain.Event) {
	for _, broadcaster := range b {
		broadcaster.Broadcast(event)
	}
}

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(event domain.Event)

func (f BroadcasterFunc) Broadcast(event domain.Event) {
	f(event)
}
