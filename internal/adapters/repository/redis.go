package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultRedisKey = "typerank:leaderboard"

// RedisStore keeps the document under a single Redis key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: defaultRedisKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

// Load implements Store.Load.
func (s *RedisStore) Load(ctx context.Context) (data []byte, err error) {
	defer func(start time.Time) { observe(BackendRedis, "load", start, err) }(time.Now())

	data, err = s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

// Save implements Store.Save.
func (s *RedisStore) Save(ctx context.Context, data []byte) (err error) {
	defer func(start time.Time) { observe(BackendRedis, "save", start, err) }(time.Now())

	if err = s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
