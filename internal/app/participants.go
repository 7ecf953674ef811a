package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

// ParticipantService handles registration and the lookup-only login.
type ParticipantService struct {
	repo ParticipantRepository
}

func NewParticipantService(repo ParticipantRepository) *ParticipantService {
	return &ParticipantService{repo: repo}
}

// Register creates a participant; the employee id must be unused.
func (s *ParticipantService) Register(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	participant.Name = strings.TrimSpace(participant.Name)
	participant.EmployeeID = strings.TrimSpace(participant.EmployeeID)
	participant.Department = strings.TrimSpace(participant.Department)
	if participant.Name == "" || participant.EmployeeID == "" || participant.Department == "" {
		return domain.Participant{}, fmt.Errorf("%w: name, employeeId and department are required", domain.ErrInvalidInput)
	}
	if err := s.repo.Create(ctx, participant); err != nil {
		return domain.Participant{}, err
	}
	log.Info().Str("employee_id", participant.EmployeeID).Msg("participant registered")
	return participant, nil
}

// Login returns the participant registered under employeeID.
func (s *ParticipantService) Login(ctx context.Context, employeeID string) (domain.Participant, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return domain.Participant{}, fmt.Errorf("%w: employeeId is required", domain.ErrInvalidInput)
	}
	return s.repo.Get(ctx, employeeID)
}
