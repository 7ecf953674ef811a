package postgres

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"live-quiz-service/internal/domain"
)

// Seed inserts the given rounds. Rounds whose number already exists are
// skipped together with their questions, so seeding is safe to repeat.
// It returns how many rounds were written.
func Seed(ctx context.Context, db *bun.DB, rounds []domain.Round) (int, error) {
	inserted := 0
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, round := range rounds {
			model := roundModel{ID: round.ID, Number: round.Number}
			res, err := tx.NewInsert().Model(&model).On("CONFLICT (round_number) DO NOTHING").Exec(ctx)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}
			questions := make([]questionModel, 0, len(round.Questions))
			for i, q := range round.Questions {
				questions = append(questions, questionModel{
					ID:       q.ID,
					RoundID:  round.ID,
					Position: i,
					Text:     q.Text,
					Options:  q.Options,
					Correct:  q.Correct,
				})
			}
			if len(questions) > 0 {
				if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
					return err
				}
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, persistence("seed rounds", err)
	}
	return inserted, nil
}
