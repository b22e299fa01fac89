package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscus/internal/domain/billing"
)

func mustRole(t *testing.T, id uint, name string, permissions PermissionMap) *Role {
	t.Helper()
	role, err := NewRole(name, "", permissions)
	require.NoError(t, err)
	require.NoError(t, role.SetID(id))
	return role
}

func mustMember(t *testing.T, id uint, roleIDs []uint) *Member {
	t.Helper()
	member, err := NewMember("user@example.com", roleIDs)
	require.NoError(t, err)
	require.NoError(t, member.SetID(id))
	return member
}

func testEntitlements(t *testing.T, limits billing.QuotaTable, features billing.FeatureFlagTable, usage *billing.FeatureUsage) *billing.Entitlements {
	t.Helper()
	if limits == nil {
		limits = billing.QuotaTable{}
	}
	plan, err := billing.NewPlan("free", "Free", limits, features)
	require.NoError(t, err)
	return billing.NewEntitlements(plan, usage)
}

func TestResolverCanPerform(t *testing.T) {
	viewer := mustRole(t, 1, "Viewer", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView),
	})
	editor := mustRole(t, 2, "Editor", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView, ActionEdit),
		ResourceAccounts:     NewActionSet(ActionView),
	})

	tc := NewTenantContext(1, []*Role{viewer, editor}, testEntitlements(t, nil, nil, nil))
	resolver := NewResolver()

	t.Run("single role grants", func(t *testing.T) {
		member := mustMember(t, 10, []uint{1})
		assert.True(t, resolver.CanPerform(tc, member, ResourceTransactions, ActionView))
		assert.False(t, resolver.CanPerform(tc, member, ResourceTransactions, ActionEdit))
	})

	t.Run("multiple roles combine by union", func(t *testing.T) {
		member := mustMember(t, 11, []uint{1, 2})
		assert.True(t, resolver.CanPerform(tc, member, ResourceTransactions, ActionEdit))
		assert.True(t, resolver.CanPerform(tc, member, ResourceAccounts, ActionView))
		assert.False(t, resolver.CanPerform(tc, member, ResourceAccounts, ActionDelete))
	})

	t.Run("member with no roles has no grants", func(t *testing.T) {
		member := mustMember(t, 12, nil)
		assert.False(t, resolver.CanPerform(tc, member, ResourceTransactions, ActionView))
	})

	t.Run("unknown role ids contribute nothing", func(t *testing.T) {
		member := mustMember(t, 13, []uint{999})
		assert.False(t, resolver.CanPerform(tc, member, ResourceTransactions, ActionView))
	})

	t.Run("unknown resource or action denies", func(t *testing.T) {
		member := mustMember(t, 14, []uint{2})
		assert.False(t, resolver.CanPerform(tc, member, Resource("reports"), ActionView))
		assert.False(t, resolver.CanPerform(tc, member, ResourceTransactions, Action("approve")))
	})

	t.Run("action outside resource's catalog entry denies", func(t *testing.T) {
		member := mustMember(t, 15, []uint{2})
		assert.False(t, resolver.CanPerform(tc, member, ResourceDashboard, ActionDelete))
	})

	t.Run("nil inputs deny", func(t *testing.T) {
		member := mustMember(t, 16, []uint{2})
		assert.False(t, resolver.CanPerform(nil, member, ResourceTransactions, ActionView))
		assert.False(t, resolver.CanPerform(tc, nil, ResourceTransactions, ActionView))
	})
}

func TestResolverAccountOverrideReplacesRoleUnion(t *testing.T) {
	editor := mustRole(t, 1, "Editor", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView, ActionCreate, ActionEdit, ActionDelete),
	})
	tc := NewTenantContext(1, []*Role{editor}, testEntitlements(t, nil, nil, nil))
	resolver := NewResolver()

	member := mustMember(t, 10, []uint{1})
	member.SetOverride(7, NewActionSet(ActionView))

	// Overridden account: the override replaces the union entirely.
	assert.True(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionView, 7))
	assert.False(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionEdit, 7))
	assert.False(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionDelete, 7))

	// Non-overridden account: role-derived default applies.
	assert.True(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionDelete, 8))

	// Non-account-scoped resources ignore the account id.
	member.AssignRole(1)
	assert.False(t, resolver.CanPerformOnAccount(tc, member, ResourceAccounts, ActionView, 7))
}

func TestResolverOverrideSurvivesRoleRemoval(t *testing.T) {
	editor := mustRole(t, 1, "Editor", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView, ActionEdit),
	})
	tc := NewTenantContext(1, []*Role{editor}, testEntitlements(t, nil, nil, nil))
	resolver := NewResolver()

	member := mustMember(t, 10, []uint{1})
	member.SetOverride(7, NewActionSet(ActionView, ActionEdit))

	member.UnassignRole(1)

	// The override seed is a snapshot: removing the role does not touch it.
	assert.True(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionEdit, 7))
	// Non-overridden accounts lose the role-derived grants.
	assert.False(t, resolver.CanPerformOnAccount(tc, member, ResourceTransactions, ActionEdit, 8))
}

func TestResolverFeatureAndQuotaGates(t *testing.T) {
	resolver := NewResolver()
	usage := billing.ReconstructFeatureUsage(1, 2, 0, 0, 0)
	ent := testEntitlements(t,
		billing.QuotaTable{billing.QuotaMembers: 3, billing.QuotaAccounts: billing.Unlimited},
		billing.FeatureFlagTable{billing.FeatureExchangeRates: true},
		usage,
	)
	tc := NewTenantContext(1, nil, ent)

	assert.True(t, resolver.CanAccessFeature(tc, billing.FeatureExchangeRates))
	assert.False(t, resolver.CanAccessFeature(tc, billing.FeatureAIAdvisor))
	assert.False(t, resolver.CanAccessFeature(tc, billing.FeatureFlag("made_up_flag")))

	assert.True(t, resolver.CanCreate(tc, billing.QuotaMembers))
	assert.True(t, resolver.CanCreate(tc, billing.QuotaAccounts))
	assert.False(t, resolver.CanCreate(tc, billing.QuotaType("widgets")))

	assert.False(t, resolver.CanAccessFeature(nil, billing.FeatureExchangeRates))
	assert.False(t, resolver.CanCreate(nil, billing.QuotaMembers))
}

func TestResolverPlanAndRoleGatesAreIndependent(t *testing.T) {
	admin := mustRole(t, 1, "Admin", PermissionMap{
		ResourceBilling: NewActionSet(ActionView, ActionEdit),
	})
	ent := testEntitlements(t, billing.QuotaTable{}, billing.FeatureFlagTable{}, nil)
	tc := NewTenantContext(1, []*Role{admin}, ent)
	resolver := NewResolver()

	member := mustMember(t, 10, []uint{1})

	// Full role grants do not unlock a feature the plan lacks.
	assert.True(t, resolver.CanPerform(tc, member, ResourceBilling, ActionEdit))
	assert.False(t, resolver.CanAccessFeature(tc, billing.FeatureAIAdvisor))
}
