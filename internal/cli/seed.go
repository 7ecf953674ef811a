package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/postgres"
)

// NewSeedCmd loads the default rounds into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default quiz rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.Open(cfg.Postgres.URL)
	defer db.Close()

	rounds := domain.SeedRounds()
	inserted, err := postgres.Seed(ctx, db, rounds)
	if err != nil {
		return err
	}
	log.Info().Int("inserted", inserted).Int("skipped", len(rounds)-inserted).Msg("rounds seeded")
	return nil
}
