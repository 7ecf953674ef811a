package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
	natspub "live-quiz-service/internal/infra/nats"
	"live-quiz-service/internal/infra/postgres"
	redisstore "live-quiz-service/internal/infra/redis"
	transport "live-quiz-service/internal/transport/http"
)

const shutdownTimeout = 5 * time.Second

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var (
		db   *bun.DB
		pool *pgxpool.Pool
	)
	if cfg.Postgres.URL != "" {
		db = postgres.Open(cfg.Postgres.URL)
		defer db.Close()
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	stores := buildStores(cfg, redisClient, db, pool)

	hub := transport.NewHub(cfg.Server.QueueSize)
	broadcasters := app.Broadcasters{hub}
	if cfg.NATS.URL != "" {
		publisher, err := natspub.Connect(natsOptions(cfg.NATS))
		if err != nil {
			return err
		}
		defer publisher.Close()
		broadcasters = append(broadcasters, publisher)
		log.Info().Str("url", cfg.NATS.URL).Msg("mirroring events to NATS")
	}

	service := app.NewQuizService(stores, broadcasters, quizOptions(cfg.Quiz))
	// Countdowns never survive a restart, so neither may a persisted active flag.
	if err := service.Reset(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, hub),
		ReadHeaderTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := service.Reset(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to clear active question")
		}
		hub.Close()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStores picks each store by precedence: Postgres, then Redis, then memory.
func buildStores(cfg config.Config, redisClient *redis.Client, db *bun.DB, pool *pgxpool.Pool) app.Stores {
	var loader memory.RoundLoader = memory.NewStaticRoundLoader(domain.SeedRounds())
	if pool != nil {
		loader = postgres.NewRoundLoader(pool)
	}

	roundsTTL := config.TTLDuration(cfg.Quiz.RoundsTTL, 10*time.Minute)
	stores := app.Stores{
		Rounds:       memory.NewRoundCatalog(loader, roundsTTL),
		Activations:  memory.NewActivationStore(),
		Answers:      memory.NewAnswerStore(),
		Participants: memory.NewParticipantStore(),
	}
	if redisClient != nil {
		stores.Rounds = redisstore.NewRoundCatalog(redisClient, loader, roundsTTL)
		stores.Activations = redisstore.NewActivationStore(redisClient)
		stores.Answers = redisstore.NewAnswerStore(redisClient)
	}
	if db != nil {
		stores.Activations = postgres.NewActivationStore(db)
		stores.Answers = postgres.NewAnswerStore(db)
		stores.Participants = postgres.NewParticipantStore(db)
	}
	return stores
}

func quizOptions(cfg config.QuizConfig) app.Options {
	return app.Options{
		TimeLimit:        config.TTLDuration(cfg.TimeLimit, app.DefaultTimeLimit),
		Tick:             config.TTLDuration(cfg.Tick, app.DefaultTick),
		PointsPerCorrect: cfg.PointsPerCorrect,
		PageSize:         cfg.PageSize,
	}
}

func natsOptions(cfg config.NATSConfig) natspub.Config {
	return natspub.Config{
		URL:           cfg.URL,
		SubjectPrefix: cfg.Subject,
		MaxReconnects: cfg.MaxReconnects,
		ReconnectWait: config.TTLDuration(cfg.ReconnectWait, 2*time.Second),
	}
}
