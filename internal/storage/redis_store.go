package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore stores values with the given TTL; ttl <= 0 keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) KeyValueStore {
	return &redisStore{client: client, ttl: ttl}
}

func NewRedisClient(dsn string, db int) (*redis.Client, error) {

	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = db

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil
}

func (r *redisStore) Get(ctx context.Context, key string) (string, bool, error) {

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {

		if err == redis.Nil {
			return "", false, nil
		}

		return "", false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	return value, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value string) error {

	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisStore) Remove(ctx context.Context, key string) error {

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
