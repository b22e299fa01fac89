package authz

import (
	"fiscus/internal/domain/billing"
)

// TenantContext is an immutable snapshot of one tenant's policy inputs: its
// roles and its entitlement snapshot. The resolver takes it explicitly, so
// there is no ambient global state and many readers can share one snapshot
// without locking. Writers assemble a fresh context after each mutation.
type TenantContext struct {
	tenantID     uint
	roles        map[uint]*Role
	roleOrder    []uint
	entitlements *billing.Entitlements
}

// NewTenantContext builds a snapshot from the tenant's roles (in store
// order; system roles conventionally first) and its entitlements.
func NewTenantContext(tenantID uint, roles []*Role, entitlements *billing.Entitlements) *TenantContext {
	byID := make(map[uint]*Role, len(roles))
	order := make([]uint, 0, len(roles))
	for _, r := range roles {
		if _, dup := byID[r.ID()]; dup {
			continue
		}
		byID[r.ID()] = r
		order = append(order, r.ID())
	}
	return &TenantContext{
		tenantID:     tenantID,
		roles:        byID,
		roleOrder:    order,
		entitlements: entitlements,
	}
}

func (tc *TenantContext) TenantID() uint {
	return tc.tenantID
}

// Role returns the role for id, or nil when the tenant has no such role.
func (tc *TenantContext) Role(id uint) *Role {
	return tc.roles[id]
}

// Roles returns the tenant's roles in store order.
func (tc *TenantContext) Roles() []*Role {
	out := make([]*Role, 0, len(tc.roleOrder))
	for _, id := range tc.roleOrder {
		out = append(out, tc.roles[id])
	}
	return out
}

func (tc *TenantContext) Entitlements() *billing.Entitlements {
	return tc.entitlements
}

// RoleUnion combines the permission maps of the member's roles by set union.
// Role ids the snapshot does not know (for example a role deleted since the
// member row was loaded) contribute nothing.
func (tc *TenantContext) RoleUnion(member *Member) PermissionMap {
	maps := make([]PermissionMap, 0, len(member.RoleIDs()))
	for _, id := range member.RoleIDs() {
		if role := tc.roles[id]; role != nil {
			maps = append(maps, role.Permissions())
		}
	}
	return UnionPermissionMaps(maps...)
}

// SeedForAccounts returns the union of the given roles' grants on the
// account-scoped resource. This is the seed an account override starts from;
// it is computed from the roles selected at the moment of toggling and is a
// snapshot, never a live reference.
func (tc *TenantContext) SeedForAccounts(roleIDs []uint) ActionSet {
	seed := NewActionSet()
	for _, id := range roleIDs {
		if role := tc.roles[id]; role != nil {
			seed = seed.Union(role.ActionsFor(ResourceTransactions))
		}
	}
	return seed
}
