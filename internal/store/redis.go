package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const schemaVersionKey = "schemaVersion"

// RedisStore keeps each key as a plain redis string under a prefix.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// OpenRedis checks (or stamps) the schema version and returns the store.
func OpenRedis(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	s := &RedisStore{redis: client, prefix: prefix}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) ensureSchema(ctx context.Context) error {
	raw, err := s.redis.Get(ctx, s.key(schemaVersionKey)).Result()
	if errors.Is(err, redis.Nil) {
		if err := s.redis.Set(ctx, s.key(schemaVersionKey), strconv.Itoa(SchemaVersion), 0).Err(); err != nil {
			return fmt.Errorf("store: stamp schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read schema version: %w", err)
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: schema version %q", ErrCorrupt, raw)
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: redis has version %d", ErrUnsupportedVersion, version)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}
