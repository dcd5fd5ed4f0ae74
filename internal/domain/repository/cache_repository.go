package repository

import (
	"context"
	"time"
)

// CacheRepository - key/value кеш с TTL (адреса геокодирования)
type CacheRepository interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Purge удаляет все ключи по шаблону и возвращает их количество
	Purge(ctx context.Context, pattern string) (int64, error)
}
