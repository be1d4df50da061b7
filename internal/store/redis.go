package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis slot backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisSlot implements Slot as a single Redis string key.
type RedisSlot struct {
	client *redis.Client
	name   string
	key    string
}

// OpenRedis connects to Redis and returns the named slot. The caller
// owns the slot and must Close it.
func OpenRedis(ctx context.Context, opts RedisOptions, name string) (*RedisSlot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisSlot(client, opts.Prefix, name), nil
}

// NewRedisSlot wraps an existing client.
func NewRedisSlot(client *redis.Client, prefix, name string) *RedisSlot {
	return &RedisSlot{client: client, name: name, key: prefix + name}
}

func (s *RedisSlot) Name() string { return s.name }

// Key returns the Redis key the slot is stored under.
func (s *RedisSlot) Key() string { return s.key }

func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}
	return data, nil
}

func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear slot %s: %w", s.key, err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity.
func (s *RedisSlot) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisSlot) Close() error {
	return s.client.Close()
}
