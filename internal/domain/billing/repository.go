package billing

import "context"

// SubscriptionRepository loads the billing state the engine consumes. The
// billing subsystem owns writes to subscriptions; the engine only reads them.
type SubscriptionRepository interface {
	GetByTenant(ctx context.Context, tenantID uint) (*Subscription, error)
}

// FeatureUsageRepository persists the per-tenant usage counters. Save writes
// the whole counter row; callers hold the tenant lock across the preceding
// quota check and the save.
type FeatureUsageRepository interface {
	GetByTenant(ctx context.Context, tenantID uint) (*FeatureUsage, error)
	Save(ctx context.Context, usage *FeatureUsage) error
}
