package app

import (
	"context"

	"live-quiz-service/internal/domain"
)

// Stores bundles the persistence ports the quiz needs.
type Stores struct {
	Rounds       RoundCatalog
	Activations  ActivationStore
	Answers      AnswerRepository
	Participants ParticipantRepository
}

// QuizService contains the quiz use cases exposed to transports.
type QuizService struct {
	controller   *SessionController
	intake       *AnswerIntake
	leaderboard  *LeaderboardEngine
	participants *ParticipantService
	broadcaster  Broadcaster
}

func NewQuizService(stores Stores, broadcaster Broadcaster, opts Options) *QuizService {
	opts = opts.withDefaults()
	return &QuizService{
		controller:   NewSessionController(stores.Rounds, stores.Activations, broadcaster, opts),
		intake:       NewAnswerIntake(stores.Rounds, stores.Answers, opts),
		leaderboard:  NewLeaderboardEngine(stores.Rounds, stores.Answers, opts),
		participants: NewParticipantService(stores.Participants),
		broadcaster:  broadcaster,
	}
}

// ActivateQuestion is the operator action that makes one question live.
func (s *QuizService) ActivateQuestion(ctx context.Context, roundNumber, questionIndex int) (domain.ActiveQuestion, error) {
	return s.controller.ActivateQuestion(ctx, roundNumber, questionIndex)
}

// ActiveQuestion lets late joiners poll the live question.
func (s *QuizService) ActiveQuestion(_ context.Context) (domain.ActiveQuestion, error) {
	return s.controller.ActiveQuestion()
}

// ListRounds returns every round with its current active flags.
func (s *QuizService) ListRounds(ctx context.Context) ([]domain.Round, error) {
	return s.controller.ListRounds(ctx)
}

// SubmitAnswer records an answer and reports whether it was correct.
func (s *QuizService) SubmitAnswer(ctx context.Context, submission domain.AnswerSubmission) (bool, error) {
	return s.intake.SubmitAnswer(ctx, submission)
}

// Leaderboard computes one page of standings without broadcasting.
func (s *QuizService) Leaderboard(ctx context.Context, scope domain.LeaderboardScope, scopeID string, page, pageSize int) (domain.LeaderboardPage, error) {
	return s.leaderboard.ComputeLeaderboard(ctx, scope, scopeID, page, pageSize)
}

// PublishLeaderboard computes standings and sends them to every client.
func (s *QuizService) PublishLeaderboard(ctx context.Context, scope domain.LeaderboardScope, scopeID string, page int) (domain.LeaderboardPage, error) {
	board, err := s.leaderboard.ComputeLeaderboard(ctx, scope, scopeID, page, 0)
	if err != nil {
		return domain.LeaderboardPage{}, err
	}
	s.broadcaster.Broadcast(domain.Event{Type: domain.EventUpdateLeaderboard, Payload: board})
	return board, nil
}

// Register creates a participant.
func (s *QuizService) Register(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	return s.participants.Register(ctx, participant)
}

// Login looks a participant up by employee id.
func (s *QuizService) Login(ctx context.Context, employeeID string) (domain.Participant, error) {
	return s.participants.Login(ctx, employeeID)
}

// Reset clears any live activation, used at startup.
func (s *QuizService) Reset(ctx context.Context) error {
	return s.controller.Reset(ctx)
}

// Close stops any running countdown.
func (s *QuizService) Close() {
	s.controller.Close()
}
