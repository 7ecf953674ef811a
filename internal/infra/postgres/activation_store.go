package postgres

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// ActivationStore keeps the active flags on the rounds and questions tables.
// Every write takes a table lock so concurrent activations serialize and the
// partial unique index on questions never sees two live rows.
type ActivationStore struct {
	db *bun.DB
}

func NewActivationStore(db *bun.DB) *ActivationStore {
	return &ActivationStore{db: db}
}

func (s *ActivationStore) Activate(ctx context.Context, roundID string, questionIndex int) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockFlags(ctx, tx); err != nil {
			return err
		}
		if err := clearFlags(ctx, tx); err != nil {
			return err
		}
		res, err := tx.NewUpdate().Model((*questionModel)(nil)).
			Set("is_active = TRUE").
			Where("round_id = ?", roundID).
			Where("position = ?", questionIndex).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		_, err = tx.NewUpdate().Model((*roundModel)(nil)).
			Set("is_active = TRUE").
			Where("id = ?", roundID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return persistence("activate", err)
	}
	return nil
}

func (s *ActivationStore) Deactivate(ctx context.Context, roundID string, questionIndex int) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockFlags(ctx, tx); err != nil {
			return err
		}
		res, err := tx.NewUpdate().Model((*questionModel)(nil)).
			Set("is_active = FALSE").
			Where("round_id = ?", roundID).
			Where("position = ?", questionIndex).
			Where("is_active").
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// superseded by a newer activation
			return nil
		}
		_, err = tx.NewUpdate().Model((*roundModel)(nil)).
			Set("is_active = FALSE").
			Where("id = ?", roundID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return persistence("deactivate", err)
	}
	return nil
}

func (s *ActivationStore) Clear(ctx context.Context) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockFlags(ctx, tx); err != nil {
			return err
		}
		return clearFlags(ctx, tx)
	})
	if err != nil {
		return persistence("clear", err)
	}
	return nil
}

// Active reports the persisted live pair.
func (s *ActivationStore) Active(ctx context.Context) (string, int, bool, error) {
	var question questionModel
	err := s.db.NewSelect().Model(&question).Where("is_active").Limit(1).Scan(ctx)
	if err == sql.ErrNoRows {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, persistence("read active", err)
	}
	return question.RoundID, question.Position, true, nil
}

func lockFlags(ctx context.Context, tx bun.Tx) error {
	_, err := tx.ExecContext(ctx, "LOCK TABLE rounds, questions IN SHARE ROW EXCLUSIVE MODE")
	return err
}

func clearFlags(ctx context.Context, tx bun.Tx) error {
	if _, err := tx.NewUpdate().Model((*questionModel)(nil)).
		Set("is_active = FALSE").
		Where("is_active").
		Exec(ctx); err != nil {
		return err
	}
	_, err := tx.NewUpdate().Model((*roundModel)(nil)).
		Set("is_active = FALSE").
		Where("is_active").
		Exec(ctx)
	return err
}
