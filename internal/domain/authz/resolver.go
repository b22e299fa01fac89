package authz

import (
	"fiscus/internal/domain/billing"
)

// Resolver answers every gating question the dashboard asks: can this member
// perform this action, is this premium feature unlocked, may one more of
// this resource type be created. It is a pure function of the tenant
// context and member passed in; it holds no state, takes no locks, and
// never blocks, so any number of readers may call it concurrently.
//
// Plan gates and role gates are independent: no role overrides a plan
// restriction and no plan substitutes for a missing role grant.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// CanPerform reports whether the member's role union grants action on
// resource. Pairs outside the catalog are denied, never an error: a gating
// check must not blow up in front of a render decision.
func (r *Resolver) CanPerform(tc *TenantContext, member *Member, resource Resource, action Action) bool {
	if tc == nil || member == nil {
		return false
	}
	if !CatalogAllows(resource, action) {
		return false
	}
	return tc.RoleUnion(member).Grants(resource, action)
}

// CanPerformOnAccount answers the account-scoped variant. When the account
// carries an override, the override's effective set fully replaces the role
// union for that account; it never merges with it. Without an override the
// role-derived default applies.
func (r *Resolver) CanPerformOnAccount(tc *TenantContext, member *Member, resource Resource, action Action, accountID uint) bool {
	if tc == nil || member == nil {
		return false
	}
	if !CatalogAllows(resource, action) {
		return false
	}
	if !IsAccountScoped(resource) {
		return tc.RoleUnion(member).Grants(resource, action)
	}
	return r.EffectiveAccountPermissions(tc, member, accountID).Has(action)
}

// EffectiveAccountPermissions returns the member's effective action set for
// one account: the override's permissions minus denied when overridden, the
// role union on the account-scoped resource otherwise.
func (r *Resolver) EffectiveAccountPermissions(tc *TenantContext, member *Member, accountID uint) ActionSet {
	if override := member.Override(accountID); override != nil {
		return override.Effective()
	}
	union := tc.RoleUnion(member)
	if actions, ok := union[ResourceTransactions]; ok {
		return actions
	}
	return NewActionSet()
}

// EffectivePermissions returns the member's full role-derived permission
// map. Account overrides are per account and reported separately.
func (r *Resolver) EffectivePermissions(tc *TenantContext, member *Member) PermissionMap {
	if tc == nil || member == nil {
		return make(PermissionMap)
	}
	return tc.RoleUnion(member)
}

// CanAccessFeature reports whether the tenant's plan unlocks the feature.
// Unknown flags are locked. This gate is independent of role permissions; a
// member with every role grant is still denied when the plan lacks the flag.
func (r *Resolver) CanAccessFeature(tc *TenantContext, flag billing.FeatureFlag) bool {
	if tc == nil || tc.Entitlements() == nil {
		return false
	}
	return tc.Entitlements().HasFeature(flag)
}

// CanCreate reports whether one more instance of the quota-bound resource
// type fits under the tenant's plan limits.
func (r *Resolver) CanCreate(tc *TenantContext, qt billing.QuotaType) bool {
	if tc == nil || tc.Entitlements() == nil {
		return false
	}
	return tc.Entitlements().CanCreate(qt)
}
