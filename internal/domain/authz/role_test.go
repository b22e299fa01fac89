package authz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoleValidation(t *testing.T) {
	t.Run("requires name", func(t *testing.T) {
		_, err := NewRole("", "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects long names", func(t *testing.T) {
		_, err := NewRole(strings.Repeat("x", 51), "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects permissions outside the catalog", func(t *testing.T) {
		_, err := NewRole("Auditor", "", PermissionMap{
			ResourceDashboard: NewActionSet(ActionDelete),
		})
		require.ErrorIs(t, err, ErrInvalidPermission)
	})

	t.Run("clones the permission map", func(t *testing.T) {
		permissions := PermissionMap{
			ResourceTransactions: NewActionSet(ActionView),
		}
		role, err := NewRole("Auditor", "", permissions)
		require.NoError(t, err)

		permissions[ResourceTransactions].Add(ActionDelete)
		assert.False(t, role.Permissions().Grants(ResourceTransactions, ActionDelete))
	})
}

func TestSystemRoleIsImmutable(t *testing.T) {
	role, err := NewSystemRole("Owner", "full access", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, role.Rename("Supreme"), ErrSystemRoleImmutable)
	assert.ErrorIs(t, role.UpdateDescription("changed"), ErrSystemRoleImmutable)
	assert.ErrorIs(t, role.SetPermissions(PermissionMap{}), ErrSystemRoleImmutable)

	assert.Equal(t, "Owner", role.Name())
	assert.True(t, role.Permissions().Grants(ResourceTransactions, ActionView))
}

func TestCustomRoleMutation(t *testing.T) {
	role, err := NewRole("Auditor", "read only", PermissionMap{
		ResourceTransactions: NewActionSet(ActionView),
	})
	require.NoError(t, err)

	require.NoError(t, role.Rename("Reviewer"))
	assert.Equal(t, "Reviewer", role.Name())

	require.NoError(t, role.SetPermissions(PermissionMap{
		ResourceTransactions: NewActionSet(ActionView, ActionEdit),
	}))
	assert.True(t, role.Permissions().Grants(ResourceTransactions, ActionEdit))

	require.ErrorIs(t, role.SetPermissions(PermissionMap{
		ResourceDashboard: NewActionSet(ActionDelete),
	}), ErrInvalidPermission)
}

func TestMemberOverrides(t *testing.T) {
	member, err := NewMember("user@example.com", []uint{1})
	require.NoError(t, err)
	require.NoError(t, member.SetID(10))

	t.Run("toggle requires an override", func(t *testing.T) {
		err := member.TogglePermission(7, ActionView)
		assert.ErrorIs(t, err, ErrAccountNotOverridden)
	})

	t.Run("set override seeds from snapshot", func(t *testing.T) {
		member.SetOverride(7, NewActionSet(ActionView, ActionEdit))
		require.True(t, member.IsOverridden(7))
		assert.ElementsMatch(t, []Action{ActionView, ActionEdit},
			member.Override(7).Effective().Actions())
	})

	t.Run("set override is idempotent", func(t *testing.T) {
		member.SetOverride(7, NewActionSet(ActionDelete))
		assert.False(t, member.Override(7).Effective().Has(ActionDelete))
	})

	t.Run("toggle flips membership", func(t *testing.T) {
		require.NoError(t, member.TogglePermission(7, ActionEdit))
		assert.False(t, member.Override(7).Effective().Has(ActionEdit))
		require.NoError(t, member.TogglePermission(7, ActionEdit))
		assert.True(t, member.Override(7).Effective().Has(ActionEdit))
	})

	t.Run("clear reverts to default", func(t *testing.T) {
		member.ClearOverride(7)
		assert.False(t, member.IsOverridden(7))
		// Clearing again is a no-op.
		member.ClearOverride(7)
	})
}

func TestNewMemberValidation(t *testing.T) {
	_, err := NewMember("", nil)
	assert.Error(t, err)

	_, err = NewMember("not-an-email", nil)
	assert.Error(t, err)

	member, err := NewMember("user@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, MemberStatusPending, member.Status())
	assert.Empty(t, member.RoleIDs())
}
