package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"live-quiz-service/internal/domain"
)

const activeKey = "quiz:active"

// deactivateScript deletes the active marker only if it still names the given pair.
var deactivateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ActivationStore keeps the live (round, question) pair in a single Redis key.
// One key means activation is a single SET and can never leave two pairs live.
type ActivationStore struct {
	client *redis.Client
}

func NewActivationStore(client *redis.Client) *ActivationStore {
	return &ActivationStore{client: client}
}

func (s *ActivationStore) Activate(ctx context.Context, roundID string, questionIndex int) error {
	if err := s.client.Set(ctx, activeKey, marker(roundID, questionIndex), 0).Err(); err != nil {
		return fmt.Errorf("%w: activate: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *ActivationStore) Deactivate(ctx context.Context, roundID string, questionIndex int) error {
	if err := deactivateScript.Run(ctx, s.client, []string{activeKey}, marker(roundID, questionIndex)).Err(); err != nil {
		return fmt.Errorf("%w: deactivate: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *ActivationStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, activeKey).Err(); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Active reads the persisted pair back.
func (s *ActivationStore) Active(ctx context.Context) (string, int, bool, error) {
	raw, err := s.client.Get(ctx, activeKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("%w: read active: %w", domain.ErrPersistence, err)
	}
	roundID, rawIndex, ok := strings.Cut(raw, "|")
	if !ok {
		return "", 0, false, fmt.Errorf("%w: malformed active marker %q", domain.ErrPersistence, raw)
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return "", 0, false, fmt.Errorf("%w: malformed active marker %q", domain.ErrPersistence, raw)
	}
	return roundID, index, true, nil
}

func marker(roundID string, questionIndex int) string {
	return roundID + "|" + strconv.Itoa(questionIndex)
}
