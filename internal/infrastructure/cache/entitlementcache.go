package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/shared/logger"
)

const (
	entitlementKeyPrefix  = "tenant:entitlements:"
	baseEntitlementTTL    = 15 * time.Minute
	entitlementTTLJitter  = 5 * time.Minute // TTL range: 15-20 min (anti-stampede)
	entitlementNullTTL    = 2 * time.Minute // Short TTL for not-found markers (anti-penetration)
	fieldPlanID           = "plan_id"
	fieldUsageMembers     = "members"
	fieldUsageAccounts    = "accounts"
	fieldUsageOrgs        = "organizations"
	fieldUsageCustomRoles = "custom_roles"
	fieldEntitlementNull  = "_null"
)

// RedisEntitlementCache implements appbilling.EntitlementCache using a Redis
// hash per tenant.
type RedisEntitlementCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisEntitlementCache creates a Redis-backed entitlement cache. A zero
// ttl falls back to the default.
func NewRedisEntitlementCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *RedisEntitlementCache {
	if ttl <= 0 {
		ttl = baseEntitlementTTL
	}
	return &RedisEntitlementCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisEntitlementCache) key(tenantID uint) string {
	return fmt.Sprintf("%s%d", entitlementKeyPrefix, tenantID)
}

// Get retrieves the cached entitlement snapshot. A nil result with nil error
// is a cache miss.
func (c *RedisEntitlementCache) Get(ctx context.Context, tenantID uint) (*appbilling.CachedEntitlements, error) {
	result, err := c.client.HGetAll(ctx, c.key(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlements from cache: %w", err)
	}

	if len(result) == 0 {
		return nil, nil // Cache miss
	}

	if result[fieldEntitlementNull] == "1" {
		return &appbilling.CachedEntitlements{NotFound: true}, nil
	}

	cached := &appbilling.CachedEntitlements{
		PlanID: result[fieldPlanID],
	}
	cached.Members = parseCounter(result[fieldUsageMembers])
	cached.Accounts = parseCounter(result[fieldUsageAccounts])
	cached.Organizations = parseCounter(result[fieldUsageOrgs])
	cached.CustomRoles = parseCounter(result[fieldUsageCustomRoles])

	return cached, nil
}

// Set stores the entitlement snapshot with a jittered TTL.
func (c *RedisEntitlementCache) Set(ctx context.Context, tenantID uint, cached *appbilling.CachedEntitlements) error {
	key := c.key(tenantID)

	fields := map[string]interface{}{
		fieldPlanID:           cached.PlanID,
		fieldUsageMembers:     cached.Members,
		fieldUsageAccounts:    cached.Accounts,
		fieldUsageOrgs:        cached.Organizations,
		fieldUsageCustomRoles: cached.CustomRoles,
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttlWithJitter())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set entitlements in cache: %w", err)
	}

	c.logger.Debugw("tenant entitlements cached",
		"tenant_id", tenantID,
		"plan_id", cached.PlanID,
	)

	return nil
}

// SetNotFound stores a short-lived marker for a tenant confirmed to have no
// subscription, preventing repeated DB lookups.
func (c *RedisEntitlementCache) SetNotFound(ctx context.Context, tenantID uint) error {
	key := c.key(tenantID)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldEntitlementNull, "1")
	pipe.Expire(ctx, key, entitlementNullTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set entitlement null marker: %w", err)
	}

	c.logger.Debugw("tenant entitlement null marker set",
		"tenant_id", tenantID,
		"ttl", entitlementNullTTL,
	)

	return nil
}

// Invalidate drops the tenant's cached snapshot. Called after every usage
// counter mutation and plan change.
func (c *RedisEntitlementCache) Invalidate(ctx context.Context, tenantID uint) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate entitlement cache: %w", err)
	}

	c.logger.Debugw("tenant entitlement cache invalidated",
		"tenant_id", tenantID,
	)

	return nil
}

func (c *RedisEntitlementCache) ttlWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(entitlementTTLJitter)))
	return c.ttl + jitter
}

func parseCounter(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
