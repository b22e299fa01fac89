package billing

import "context"

// CachedEntitlements is the cache representation of a tenant's entitlement
// inputs: the resolved plan id plus the usage counters at snapshot time.
// NotFound marks a tenant confirmed to have no subscription row, so repeated
// misses do not hammer the database.
type CachedEntitlements struct {
	PlanID        string
	Members       int
	Accounts      int
	Organizations int
	CustomRoles   int
	NotFound      bool
}

// EntitlementCache is the read-through cache in front of the subscription
// and usage tables. Implementations live in infrastructure.
type EntitlementCache interface {
	Get(ctx context.Context, tenantID uint) (*CachedEntitlements, error)
	Set(ctx context.Context, tenantID uint, cached *CachedEntitlements) error
	SetNotFound(ctx context.Context, tenantID uint) error
	Invalidate(ctx context.Context, tenantID uint) error
}
