package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/shared/logger"
)

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestEntitlementCacheSetGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisEntitlementCache(client, 0, newNopLogger())
	ctx := context.Background()

	cached := &appbilling.CachedEntitlements{
		PlanID:        "business",
		Members:       7,
		Accounts:      3,
		Organizations: 1,
		CustomRoles:   4,
	}
	require.NoError(t, cache.Set(ctx, 42, cached))

	got, err := cache.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "business", got.PlanID)
	assert.Equal(t, 7, got.Members)
	assert.Equal(t, 3, got.Accounts)
	assert.Equal(t, 1, got.Organizations)
	assert.Equal(t, 4, got.CustomRoles)
	assert.False(t, got.NotFound)
}

func TestEntitlementCacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisEntitlementCache(client, 0, newNopLogger())

	got, err := cache.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntitlementCacheNotFoundMarker(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisEntitlementCache(client, 0, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.SetNotFound(ctx, 7))

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.NotFound)

	// The marker carries a short TTL so a later subscription is picked up.
	ttl := mr.TTL("tenant:entitlements:7")
	assert.Equal(t, entitlementNullTTL, ttl)

	mr.FastForward(entitlementNullTTL + time.Second)
	got, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntitlementCacheSetReplacesMarker(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisEntitlementCache(client, 0, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.SetNotFound(ctx, 7))
	require.NoError(t, cache.Set(ctx, 7, &appbilling.CachedEntitlements{PlanID: "starter"}))

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.NotFound)
	assert.Equal(t, "starter", got.PlanID)
}

func TestEntitlementCacheTTLJitter(t *testing.T) {
	client, mr := setupTestRedis(t)
	base := 10 * time.Minute
	cache := NewRedisEntitlementCache(client, base, newNopLogger())

	require.NoError(t, cache.Set(context.Background(), 42, &appbilling.CachedEntitlements{PlanID: "free"}))

	ttl := mr.TTL("tenant:entitlements:42")
	assert.GreaterOrEqual(t, ttl, base)
	assert.Less(t, ttl, base+entitlementTTLJitter)
}

func TestEntitlementCacheInvalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisEntitlementCache(client, 0, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 42, &appbilling.CachedEntitlements{PlanID: "free"}))
	require.NoError(t, cache.Invalidate(ctx, 42))

	got, err := cache.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Invalidating an absent key is not an error.
	assert.NoError(t, cache.Invalidate(ctx, 42))
}
