package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	return NewRedisCache(client, logger), server
}

type cachedEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestSetGetRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "leaderboard:global:p1:l10", cachedEntry{Name: "alice", Score: 97}, time.Minute))

	var got cachedEntry
	require.NoError(t, cache.Get(ctx, "leaderboard:global:p1:l10", &got))
	assert.Equal(t, cachedEntry{Name: "alice", Score: 97}, got)
}

func TestGetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got cachedEntry
	err := cache.Get(context.Background(), "leaderboard:global:p1:l10", &got)

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGetExpiredKeyIsMiss(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedEntry{Name: "bob"}, time.Minute))
	server.FastForward(2 * time.Minute)

	var got cachedEntry
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedEntry{Name: "bob"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got cachedEntry
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestDeletePattern(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "leaderboard:quiz:1:p1:l10", cachedEntry{}, time.Minute))
	require.NoError(t, cache.Set(ctx, "leaderboard:quiz:2:p1:l10", cachedEntry{}, time.Minute))
	require.NoError(t, cache.Set(ctx, "leaderboard:global:p1:l10", cachedEntry{}, time.Minute))

	require.NoError(t, cache.DeletePattern(ctx, "leaderboard:quiz:*"))

	var got cachedEntry
	assert.ErrorIs(t, cache.Get(ctx, "leaderboard:quiz:1:p1:l10", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "leaderboard:quiz:2:p1:l10", &got), ErrCacheMiss)
	assert.NoError(t, cache.Get(ctx, "leaderboard:global:p1:l10", &got))
}
