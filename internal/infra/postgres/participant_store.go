package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"live-quiz-service/internal/domain"
)

type ParticipantStore struct {
	db *bun.DB
}

func NewParticipantStore(db *bun.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) Create(ctx context.Context, participant domain.Participant) error {
	model := participantModel{
		EmployeeID: participant.EmployeeID,
		Name:       participant.Name,
		Department: participant.Department,
	}
	if _, err := s.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateParticipant
		}
		return persistence("create participant", err)
	}
	return nil
}

func (s *ParticipantStore) Get(ctx context.Context, employeeID string) (domain.Participant, error) {
	var model participantModel
	err := s.db.NewSelect().Model(&model).Where("employee_id = ?", employeeID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, persistence("get participant", err)
	}
	return domain.Participant{
		EmployeeID: model.EmployeeID,
		Name:       model.Name,
		Department: model.Department,
	}, nil
}
