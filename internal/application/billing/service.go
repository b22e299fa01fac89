// Package billing provides the application services that refresh and cache
// tenant entitlement snapshots and keep usage counters honest.
package billing

import (
	"context"
	"fmt"
	"time"

	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/logger"
)

// EntitlementService assembles the entitlement snapshot the resolver reads.
// It is the only reader of the billing tables inside the engine and the only
// writer of the usage counters. Subscriptions themselves stay read-only; the
// billing subsystem owns them.
type EntitlementService struct {
	subscriptionRepo billing.SubscriptionRepository
	usageRepo        billing.FeatureUsageRepository
	planCatalog      *billing.PlanCatalog
	cache            EntitlementCache
	logger           logger.Interface
}

func NewEntitlementService(
	subscriptionRepo billing.SubscriptionRepository,
	usageRepo billing.FeatureUsageRepository,
	planCatalog *billing.PlanCatalog,
	cache EntitlementCache,
	logger logger.Interface,
) *EntitlementService {
	return &EntitlementService{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		planCatalog:      planCatalog,
		cache:            cache,
		logger:           logger,
	}
}

// Refresh returns the tenant's current entitlement snapshot, consulting the
// cache first. A tenant without an active subscription degrades to the free
// plan rather than erroring: expiry must always mean fewer entitlements,
// never a crash or an open gate.
func (s *EntitlementService) Refresh(ctx context.Context, tenantID uint) (*billing.Entitlements, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID)
		if err != nil {
			s.logger.Warnw("entitlement cache read failed", "tenant_id", tenantID, "error", err)
		} else if cached != nil {
			return s.fromCache(tenantID, cached), nil
		}
	}

	ent, cacheValue, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheValue.NotFound {
			if err := s.cache.SetNotFound(ctx, tenantID); err != nil {
				s.logger.Warnw("entitlement cache write failed", "tenant_id", tenantID, "error", err)
			}
		} else if err := s.cache.Set(ctx, tenantID, cacheValue); err != nil {
			s.logger.Warnw("entitlement cache write failed", "tenant_id", tenantID, "error", err)
		}
	}

	return ent, nil
}

func (s *EntitlementService) load(ctx context.Context, tenantID uint) (*billing.Entitlements, *CachedEntitlements, error) {
	sub, err := s.subscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	plan := s.planCatalog.FreePlan()
	notFound := sub == nil
	if sub != nil && sub.IsActive(time.Now()) {
		if p := s.planCatalog.Plan(sub.PlanID()); p != nil {
			plan = p
		} else {
			// Unrecognized plan id: fail toward the free tier.
			s.logger.Warnw("subscription references unknown plan, degrading to free",
				"tenant_id", tenantID, "plan_id", sub.PlanID())
		}
	}

	usage, err := s.usageRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load feature usage: %w", err)
	}
	if usage == nil {
		usage = billing.NewFeatureUsage(tenantID)
	}

	cached := &CachedEntitlements{
		PlanID:        plan.ID(),
		Members:       usage.Members(),
		Accounts:      usage.Accounts(),
		Organizations: usage.Organizations(),
		CustomRoles:   usage.CustomRoles(),
		NotFound:      notFound,
	}
	return billing.NewEntitlements(plan, usage), cached, nil
}

func (s *EntitlementService) fromCache(tenantID uint, cached *CachedEntitlements) *billing.Entitlements {
	plan := s.planCatalog.Plan(cached.PlanID)
	if plan == nil || cached.NotFound {
		plan = s.planCatalog.FreePlan()
	}
	usage := billing.ReconstructFeatureUsage(tenantID,
		cached.Members, cached.Accounts, cached.Organizations, cached.CustomRoles)
	return billing.NewEntitlements(plan, usage)
}

// RecordCreation increments the tenant's usage counter for a quota type and
// persists it. Callers hold the tenant write lock so the preceding CanCreate
// check and this increment form one atomic step.
func (s *EntitlementService) RecordCreation(ctx context.Context, tenantID uint, qt billing.QuotaType) error {
	return s.adjustUsage(ctx, tenantID, qt, +1)
}

// RecordDeletion decrements the tenant's usage counter for a quota type.
func (s *EntitlementService) RecordDeletion(ctx context.Context, tenantID uint, qt billing.QuotaType) error {
	return s.adjustUsage(ctx, tenantID, qt, -1)
}

func (s *EntitlementService) adjustUsage(ctx context.Context, tenantID uint, qt billing.QuotaType, delta int) error {
	usage, err := s.usageRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load feature usage: %w", err)
	}
	if usage == nil {
		usage = billing.NewFeatureUsage(tenantID)
	}

	if delta > 0 {
		usage.Increment(qt)
	} else {
		usage.Decrement(qt)
	}

	if err := s.usageRepo.Save(ctx, usage); err != nil {
		return fmt.Errorf("failed to save feature usage: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tenantID); err != nil {
			s.logger.Warnw("entitlement cache invalidation failed", "tenant_id", tenantID, "error", err)
		}
	}
	return nil
}

// PlanCatalog exposes the immutable catalog for read-only callers.
func (s *EntitlementService) PlanCatalog() *billing.PlanCatalog {
	return s.planCatalog
}
