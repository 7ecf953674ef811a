package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"live-quiz-service/internal/domain"
)

type roundModel struct {
	bun.BaseModel `bun:"table:rounds"`

	ID       string `bun:"id,pk"`
	Number   int    `bun:"round_number,notnull"`
	IsActive bool   `bun:"is_active,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID       string   `bun:"id,pk"`
	RoundID  string   `bun:"round_id,notnull"`
	Position int      `bun:"position,notnull"`
	Text     string   `bun:"question_text,notnull"`
	Options  []string `bun:"options,type:jsonb,notnull"`
	Correct  string   `bun:"correct,notnull"`
	IsActive bool     `bun:"is_active,notnull"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers"`

	ID              string    `bun:"id,pk"`
	QuestionID      string    `bun:"question_id,notnull"`
	RoundID         string    `bun:"round_id,notnull"`
	ParticipantID   string    `bun:"participant_id,notnull"`
	ParticipantName string    `bun:"participant_name,notnull"`
	Answer          string    `bun:"answer,notnull"`
	IsCorrect       bool      `bun:"is_correct,notnull"`
	TimeTaken       float64   `bun:"time_taken,notnull"`
	SubmittedAt     time.Time `bun:"submitted_at,notnull"`
}

func (m answerModel) toDomain() domain.Answer {
	return domain.Answer{
		ID:              m.ID,
		QuestionID:      m.QuestionID,
		RoundID:         m.RoundID,
		ParticipantID:   m.ParticipantID,
		ParticipantName: m.ParticipantName,
		Answer:          m.Answer,
		IsCorrect:       m.IsCorrect,
		TimeTaken:       m.TimeTaken,
		SubmittedAt:     m.SubmittedAt,
	}
}

func answerFromDomain(a domain.Answer) answerModel {
	return answerModel{
		ID:              a.ID,
		QuestionID:      a.QuestionID,
		RoundID:         a.RoundID,
		ParticipantID:   a.ParticipantID,
		ParticipantName: a.ParticipantName,
		Answer:          a.Answer,
		IsCorrect:       a.IsCorrect,
		TimeTaken:       a.TimeTaken,
		SubmittedAt:     a.SubmittedAt.UTC(),
	}
}

type participantModel struct {
	bun.BaseModel `bun:"table:participants"`

	EmployeeID string `bun:"employee_id,pk"`
	Name       string `bun:"name,notnull"`
	Department string `bun:"department,notnull"`
}
