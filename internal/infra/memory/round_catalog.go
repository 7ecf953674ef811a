package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"live-quiz-service/internal/domain"
)

// RoundLoader fetches round definitions from a backing store.
type RoundLoader interface {
	LoadRounds(ctx context.Context) ([]domain.Round, error)
}

// RoundCatalog caches round definitions with TTL to avoid repeated DB hits.
// Callers must treat the returned rounds as read-only.
type RoundCatalog struct {
	loader RoundLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	rounds    []domain.Round
	expiresAt time.Time
}

func NewRoundCatalog(loader RoundLoader, ttl time.Duration) *RoundCatalog {
	return &RoundCatalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *RoundCatalog) ListRounds(ctx context.Context) ([]domain.Round, error) {
	if rounds, ok := c.cached(c.clock()); ok {
		return rounds, nil
	}

	result, err, _ := c.sf.Do("rounds", func() (interface{}, error) {
		now := c.clock()
		if rounds, ok := c.cached(now); ok {
			return rounds, nil
		}

		rounds, err := c.loader.LoadRounds(ctx)
		if err != nil {
			return nil, err
		}
		sortRounds(rounds)

		c.mu.Lock()
		c.rounds = rounds
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return rounds, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Round), nil
}

func (c *RoundCatalog) cached(now time.Time) ([]domain.Round, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rounds != nil && c.expiresAt.After(now) {
		return c.rounds, true
	}
	return nil, false
}

func (c *RoundCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticRoundLoader serves a fixed set of rounds (seed data, tests).
type StaticRoundLoader struct {
	rounds []domain.Round
}

func NewStaticRoundLoader(rounds []domain.Round) *StaticRoundLoader {
	return &StaticRoundLoader{rounds: rounds}
}

func (l *StaticRoundLoader) LoadRounds(_ context.Context) ([]domain.Round, error) {
	rounds := make([]domain.Round, len(l.rounds))
	copy(rounds, l.rounds)
	return rounds, nil
}

func sortRounds(rounds []domain.Round) {
	sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
}
