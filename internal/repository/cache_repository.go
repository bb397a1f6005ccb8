package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"

	"github.com/redis/go-redis/v9"
)

type cacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) domain.CacheRepository {
	return &cacheRepository{client: client}
}

func (r *cacheRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *cacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *cacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

const oracleAPIKeyKey = "settings:oracle_api_key"

type settingsRepository struct {
	client *redis.Client
}

func NewSettingsRepository(client *redis.Client) domain.SettingsRepository {
	return &settingsRepository{client: client}
}

func (r *settingsRepository) SetOracleAPIKey(ctx context.Context, key string) error {
	return r.client.Set(ctx, oracleAPIKeyKey, key, 0).Err()
}

// GetOracleAPIKey returns an empty string when no key has been stored.
func (r *settingsRepository) GetOracleAPIKey(ctx context.Context) (string, error) {
	key, err := r.client.Get(ctx, oracleAPIKeyKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return key, nil
}
