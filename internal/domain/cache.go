package domain

import (
	"context"
	"time"
)

type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SettingsRepository holds user-supplied runtime settings, currently only
// the scoring oracle credential.
type SettingsRepository interface {
	SetOracleAPIKey(ctx context.Context, key string) error
	GetOracleAPIKey(ctx context.Context) (string, error)
}
