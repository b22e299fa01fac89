package billing

// Entitlements is an immutable snapshot of what a tenant's subscription
// unlocks: the plan's quota table and feature flags joined with the tenant's
// live usage counters. The permission resolver reads it without locking;
// writers build a fresh snapshot instead of mutating one in place.
type Entitlements struct {
	planID   string
	limits   QuotaTable
	features FeatureFlagTable
	usage    *FeatureUsage
}

func NewEntitlements(plan *Plan, usage *FeatureUsage) *Entitlements {
	if usage == nil {
		usage = NewFeatureUsage(0)
	}
	return &Entitlements{
		planID:   plan.ID(),
		limits:   plan.Limits(),
		features: plan.Features(),
		usage:    usage.Clone(),
	}
}

func (e *Entitlements) CurrentPlan() string {
	return e.planID
}

func (e *Entitlements) PlanLimits() QuotaTable {
	return e.limits.Clone()
}

func (e *Entitlements) Usage() *FeatureUsage {
	return e.usage.Clone()
}

// HasFeature reports whether the plan enables the flag. Unknown flag ids are
// disabled: the table never fails open.
func (e *Entitlements) HasFeature(flag FeatureFlag) bool {
	return e.features.Enabled(flag)
}

// CanCreate reports whether one more instance of the quota type fits under
// the plan limit. A limit of Unlimited always passes; a quota type the plan
// does not declare never does.
func (e *Entitlements) CanCreate(qt QuotaType) bool {
	limit, ok := e.limits.Limit(qt)
	if !ok {
		return false
	}
	if limit == Unlimited {
		return true
	}
	return e.usage.Count(qt) < limit
}

// WithUsage derives a new snapshot carrying updated usage counters.
func (e *Entitlements) WithUsage(usage *FeatureUsage) *Entitlements {
	return &Entitlements{
		planID:   e.planID,
		limits:   e.limits,
		features: e.features,
		usage:    usage.Clone(),
	}
}
