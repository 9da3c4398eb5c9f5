package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps all settings in one Redis hash.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over the hash at key.
func NewRedisStore(rdb redis.Cmdable, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return v, true, nil
}

// SetMany writes every value with a single HSET.
func (s *RedisStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}
	if err := s.rdb.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]string, error) {
	out, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return out, nil
}
