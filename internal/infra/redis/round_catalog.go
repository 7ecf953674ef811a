package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"live-quiz-service/internal/domain"
)

const roundsKey = "quiz:rounds"

// RoundLoader fetches round definitions from a backing store.
type RoundLoader interface {
	LoadRounds(ctx context.Context) ([]domain.Round, error)
}

// RoundCatalog caches the round definitions in Redis as one JSON document and
// falls back to the loader on a miss.
type RoundCatalog struct {
	client *redis.Client
	loader RoundLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewRoundCatalog(client *redis.Client, loader RoundLoader, ttl time.Duration) *RoundCatalog {
	return &RoundCatalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *RoundCatalog) ListRounds(ctx context.Context) ([]domain.Round, error) {
	if rounds, ok := c.cached(ctx); ok {
		return rounds, nil
	}

	result, err, _ := c.sf.Do(roundsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rounds, ok := c.cached(ctx); ok {
			return rounds, nil
		}

		rounds, err := c.loader.LoadRounds(ctx)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })

		data, err := json.Marshal(rounds)
		if err != nil {
			return nil, fmt.Errorf("marshal rounds: %w", err)
		}
		if err := c.client.Set(ctx, roundsKey, data, c.ttlWithJitter()).Err(); err != nil {
			// serving from the loader is still correct, only slower
			log.Warn().Err(err).Msg("failed to cache rounds in redis")
		}
		return rounds, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Round), nil
}

func (c *RoundCatalog) cached(ctx context.Context) ([]domain.Round, bool) {
	data, err := c.client.Get(ctx, roundsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rounds []domain.Round
	if err := json.Unmarshal(data, &rounds); err != nil {
		return nil, false
	}
	return rounds, true
}

func (c *RoundCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
