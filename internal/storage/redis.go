package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores blobs as plain string values without expiry.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) (*RedisKV, error) {
	if client == nil {
		return nil, errors.New("storage: nil redis client")
	}
	return &RedisKV{client: client}, nil
}

func OpenRedis(ctx context.Context, redisURL string) (*RedisKV, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisKV{client: client}, nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

func (r *RedisKV) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blob, nil
}

func (r *RedisKV) Save(ctx context.Context, key string, blob []byte) error {
	return r.client.Set(ctx, key, blob, 0).Err()
}
