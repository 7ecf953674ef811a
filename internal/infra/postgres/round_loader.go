package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"live-quiz-service/internal/domain"
)

const loadRoundsQuery = `
SELECT r.id, r.round_number, q.id, q.question_text, q.options, q.correct
FROM rounds r
JOIN questions q ON q.round_id = r.id
ORDER BY r.round_number, q.position`

// RoundLoader reads round content from Postgres. Active flags are not loaded.
type RoundLoader struct {
	pool *pgxpool.Pool
}

func NewRoundLoader(pool *pgxpool.Pool) *RoundLoader {
	return &RoundLoader{pool: pool}
}

func (l *RoundLoader) LoadRounds(ctx context.Context) ([]domain.Round, error) {
	rows, err := l.pool.Query(ctx, loadRoundsQuery)
	if err != nil {
		return nil, persistence("load rounds", err)
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		var (
			roundID  string
			number   int
			question domain.Question
			options  []byte
		)
		if err := rows.Scan(&roundID, &number, &question.ID, &question.Text, &options, &question.Correct); err != nil {
			return nil, persistence("scan round", err)
		}
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, fmt.Errorf("%w: decode options for %s: %w", domain.ErrPersistence, question.ID, err)
		}
		if n := len(rounds); n == 0 || rounds[n-1].ID != roundID {
			rounds = append(rounds, domain.Round{ID: roundID, Number: number})
		}
		last := &rounds[len(rounds)-1]
		last.Questions = append(last.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("load rounds", err)
	}
	return rounds, nil
}
