package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"beatstore/pkg/platform/sentinel"
)

const keyPrefix = "beatstore:local:"

// RedisStore persists one visitor's documents in Redis under
// "beatstore:local:<namespace>:<key>".
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires documents after ttl of inactivity. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedis returns a store scoped to namespace, typically a visitor id.
func NewRedis(client *redis.Client, namespace string, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if namespace == "" {
		return nil, errors.New("namespace is required")
	}
	s := &RedisStore{client: client, namespace: namespace}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) key(k Key) string {
	return keyPrefix + s.namespace + ":" + string(k)
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if s.ttl > 0 {
		// Sliding expiry; a failed refresh only shortens the document's life.
		_ = s.client.Expire(ctx, s.key(key), s.ttl).Err()
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
