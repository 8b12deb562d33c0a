package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// FlagStore persists the "database already seeded" marker. The flag is only
// a shortcut that avoids re-probing the remote store on every boot; the
// empty-collection test in Initialize remains the correctness precondition.
type FlagStore interface {
	Get(ctx context.Context) (bool, error)
	Set(ctx context.Context) error
}

// RedisFlag keeps the marker under a single Redis key.
type RedisFlag struct {
	client *redis.Client
	key    string
}

// NewRedisFlag builds a flag store over the given client and key.
func NewRedisFlag(client *redis.Client, key string) *RedisFlag {
	return &RedisFlag{client: client, key: key}
}

// Get reports whether the marker is present.
func (f *RedisFlag) Get(ctx context.Context) (bool, error) {
	val, err := f.client.Get(ctx, f.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val == "true", nil
}

// Set records the marker with no expiry.
func (f *RedisFlag) Set(ctx context.Context) error {
	return f.client.Set(ctx, f.key, "true", 0).Err()
}
