package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photo-watermark/internal/repository/cache"
)

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	return client
}

func TestCacheRepository_GetSet(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := cache.NewCacheRepositoryWithClient(client, zap.NewNop())
	ctx := context.Background()
	key := "test:geocode:amap:street:0:39.90420:116.40740"
	defer client.Del(ctx, key)

	t.Run("miss returns nil without error", func(t *testing.T) {
		val, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, key, []byte("北京市东城区"), time.Minute))

		val, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "北京市东城区", string(val))

		ok, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, key))

		ok, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCacheRepository_Purge(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := cache.NewCacheRepositoryWithClient(client, zap.NewNop())
	ctx := context.Background()

	keys := []string{"test:purge:a", "test:purge:b", "test:purge:c"}
	for _, k := range keys {
		require.NoError(t, repo.Set(ctx, k, []byte("x"), time.Minute))
	}
	require.NoError(t, repo.Set(ctx, "test:keep", []byte("x"), time.Minute))
	defer client.Del(ctx, "test:keep")

	deleted, err := repo.Purge(ctx, "test:purge:*")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	ok, err := repo.Exists(ctx, "test:keep")
	require.NoError(t, err)
	assert.True(t, ok)
}
