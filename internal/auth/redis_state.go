package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisStatePrefix = "oauth_state:"

// RedisStateStore keeps pending attempts in Redis so callbacks can land
// on any instance. Expiry is enforced by key TTL; consumption is atomic
// via GETDEL.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Store(ctx context.Context, provider, state string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	key := redisStatePrefix + provider + ":" + state
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, provider, state string) error {
	key := redisStatePrefix + provider + ":" + state
	err := s.client.GetDel(ctx, key).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrStateNotFound
		}
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}

var _ StateStore = (*RedisStateStore)(nil)
