package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps one binary-encoded record per key "<prefix>:cred:<username>".
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using client. An empty prefix defaults to "gc".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gc"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(username string) string {
	return s.prefix + ":cred:" + username
}

// Save implements [Store].
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(rec.Username), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Load implements [Store].
func (s *RedisStore) Load(ctx context.Context, username string) (Record, error) {
	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return Record{}, err
	}
	if rec.Username != username {
		return Record{}, fmt.Errorf("%w: key holds record for %q", ErrMalformed, rec.Username)
	}
	return rec, nil
}

// Delete implements [Store].
func (s *RedisStore) Delete(ctx context.Context, username string) error {
	n, err := s.redis.Del(ctx, s.key(username)).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
