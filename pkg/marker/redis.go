package marker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "notify:seen:"

// RedisStore is a Store shared across instances, implemented with a single
// SET NX so the check and the mark are one round trip.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore for the given server address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisStoreWithClient wraps an existing client, mainly for tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// CheckAndMark implements Store. SET NX returns false when the key already
// exists, which maps directly to seen=true.
func (s *RedisStore) CheckAndMark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, redisKeyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
