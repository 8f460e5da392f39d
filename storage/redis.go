package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores items as plain string values under "<name>:<scope>" with a
// sliding TTL refreshed on every write.
type Redis struct {
	client *redis.Client
	scope  ScopeFunc
	ttl    time.Duration
}

func NewRedis(client *redis.Client, scope ScopeFunc, ttl time.Duration) *Redis {
	return &Redis{client: client, scope: scope, ttl: ttl}
}

func (r *Redis) GetItem(ctx context.Context, name string) ([]byte, error) {
	key, err := r.key(ctx, name)
	if err != nil {
		return nil, err
	}

	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (r *Redis) SetItem(ctx context.Context, name string, value []byte) error {
	key, err := r.key(ctx, name)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) RemoveItem(ctx context.Context, name string) error {
	key, err := r.key(ctx, name)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *Redis) key(ctx context.Context, name string) (string, error) {
	scope, err := r.scope(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", name, scope), nil
}
