package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.RoleModel{},
		&models.MemberModel{},
		&models.MemberRoleModel{},
		&models.AccountOverrideModel{},
		&models.SubscriptionModel{},
		&models.FeatureUsageModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestRole(t *testing.T, name string, actions ...authz.Action) *authz.Role {
	t.Helper()
	role, err := authz.NewRole(name, "test role", authz.PermissionMap{
		authz.ResourceTransactions: authz.NewActionSet(actions...),
		authz.ResourceDashboard:    authz.NewActionSet(authz.ActionView),
	})
	require.NoError(t, err)
	return role
}

func TestRoleRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	role := createTestRole(t, "Auditor", authz.ActionView, authz.ActionEdit)
	require.NoError(t, repo.Create(ctx, 1, role))
	assert.NotZero(t, role.ID())

	found, err := repo.GetByID(ctx, 1, role.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Auditor", found.Name())
	assert.True(t, found.ActionsFor(authz.ResourceTransactions).Has(authz.ActionView))
	assert.True(t, found.ActionsFor(authz.ResourceTransactions).Has(authz.ActionEdit))
	assert.False(t, found.ActionsFor(authz.ResourceTransactions).Has(authz.ActionDelete))
	assert.True(t, found.ActionsFor(authz.ResourceDashboard).Has(authz.ActionView))
}

func TestRoleRepository_TenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	role := createTestRole(t, "Auditor", authz.ActionView)
	require.NoError(t, repo.Create(ctx, 1, role))

	found, err := repo.GetByID(ctx, 2, role.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, repo.Delete(ctx, 2, role.ID()), authz.ErrRoleNotFound)
}

func TestRoleRepository_ListOrdersSystemFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	custom := createTestRole(t, "Auditor", authz.ActionView)
	require.NoError(t, repo.Create(ctx, 1, custom))

	// System roles are written by the seeder, not through Create; insert the
	// row directly.
	permissions, err := permissionsToJSON(authz.PermissionMap{
		authz.ResourceTransactions: authz.ValidActions(authz.ResourceTransactions),
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.RoleModel{
		TenantID:    1,
		Name:        "Owner",
		IsSystem:    true,
		Permissions: permissions,
	}).Error)

	roles, err := repo.ListByTenant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Owner", roles[0].Name())
	assert.True(t, roles[0].IsSystem())
	assert.Equal(t, "Auditor", roles[1].Name())
}

func TestRoleRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	role := createTestRole(t, "Auditor", authz.ActionView)
	require.NoError(t, repo.Create(ctx, 1, role))

	require.NoError(t, role.Rename("Reviewer"))
	require.NoError(t, role.SetPermissions(authz.PermissionMap{
		authz.ResourceTransactions: authz.NewActionSet(authz.ActionView, authz.ActionDelete),
	}))
	require.NoError(t, repo.Update(ctx, 1, role))

	found, err := repo.GetByID(ctx, 1, role.ID())
	require.NoError(t, err)
	assert.Equal(t, "Reviewer", found.Name())
	assert.True(t, found.ActionsFor(authz.ResourceTransactions).Has(authz.ActionDelete))
	assert.True(t, found.ActionsFor(authz.ResourceDashboard).IsEmpty())
}

func TestRoleRepository_DeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	roleRepo := NewRoleRepository(db)
	memberRepo := NewMemberRepository(db)
	ctx := context.Background()

	role := createTestRole(t, "Auditor", authz.ActionView)
	require.NoError(t, roleRepo.Create(ctx, 1, role))
	other := createTestRole(t, "Reviewer", authz.ActionView)
	require.NoError(t, roleRepo.Create(ctx, 1, other))

	member, err := authz.NewMember("a@example.com", []uint{role.ID(), other.ID()})
	require.NoError(t, err)
	require.NoError(t, memberRepo.Create(ctx, 1, member))

	// A member of another tenant holding the same role id keeps it.
	foreign, err := authz.NewMember("b@example.com", []uint{role.ID()})
	require.NoError(t, err)
	require.NoError(t, memberRepo.Create(ctx, 2, foreign))

	count, err := roleRepo.CountAssignedMembers(ctx, 1, role.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, roleRepo.UnassignFromAllMembers(ctx, 1, role.ID()))
	require.NoError(t, roleRepo.Delete(ctx, 1, role.ID()))

	reloaded, err := memberRepo.GetByID(ctx, 1, member.ID())
	require.NoError(t, err)
	assert.Equal(t, []uint{other.ID()}, reloaded.RoleIDs())

	foreignReloaded, err := memberRepo.GetByID(ctx, 2, foreign.ID())
	require.NoError(t, err)
	assert.Equal(t, []uint{role.ID()}, foreignReloaded.RoleIDs())
}

func TestMemberRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member, err := authz.NewMember("finance@example.com", []uint{3, 5})
	require.NoError(t, err)
	member.SetOverride(7, authz.NewActionSet(authz.ActionView, authz.ActionEdit))
	require.NoError(t, repo.Create(ctx, 1, member))
	assert.NotZero(t, member.ID())

	found, err := repo.GetByID(ctx, 1, member.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "finance@example.com", found.Email())
	assert.Equal(t, authz.MemberStatusPending, found.Status())
	assert.ElementsMatch(t, []uint{3, 5}, found.RoleIDs())

	require.True(t, found.IsOverridden(7))
	effective := found.Override(7).Effective()
	assert.True(t, effective.Has(authz.ActionView))
	assert.True(t, effective.Has(authz.ActionEdit))
	assert.False(t, effective.Has(authz.ActionDelete))
}

func TestMemberRepository_GetByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member, err := authz.NewMember("finance@example.com", []uint{3})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, 1, member))

	found, err := repo.GetByEmail(ctx, 1, "finance@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, member.ID(), found.ID())

	missing, err := repo.GetByEmail(ctx, 1, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemberRepository_UpdateReplacesAssociations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member, err := authz.NewMember("finance@example.com", []uint{3})
	require.NoError(t, err)
	member.SetOverride(7, authz.NewActionSet(authz.ActionView))
	require.NoError(t, repo.Create(ctx, 1, member))

	member.SetRoles([]uint{5})
	member.ClearOverride(7)
	member.SetOverride(8, authz.NewActionSet(authz.ActionEdit))
	member.Activate()
	require.NoError(t, repo.Update(ctx, 1, member))

	found, err := repo.GetByID(ctx, 1, member.ID())
	require.NoError(t, err)
	assert.Equal(t, authz.MemberStatusActive, found.Status())
	assert.Equal(t, []uint{5}, found.RoleIDs())
	assert.Equal(t, []uint{8}, found.OverriddenAccountIDs())

	t.Run("update of unknown member", func(t *testing.T) {
		ghost, err := authz.NewMember("ghost@example.com", []uint{3})
		require.NoError(t, err)
		require.NoError(t, ghost.SetID(404))
		assert.ErrorIs(t, repo.Update(ctx, 1, ghost), authz.ErrMemberNotFound)
	})
}

func TestMemberRepository_DeleteRemovesAssociations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member, err := authz.NewMember("finance@example.com", []uint{3})
	require.NoError(t, err)
	member.SetOverride(7, authz.NewActionSet(authz.ActionView))
	require.NoError(t, repo.Create(ctx, 1, member))

	require.NoError(t, repo.Delete(ctx, 1, member.ID()))

	found, err := repo.GetByID(ctx, 1, member.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	var roleRows int64
	require.NoError(t, db.Model(&models.MemberRoleModel{}).Where("member_id = ?", member.ID()).Count(&roleRows).Error)
	assert.Zero(t, roleRows)

	var overrideRows int64
	require.NoError(t, db.Model(&models.AccountOverrideModel{}).Where("member_id = ?", member.ID()).Count(&overrideRows).Error)
	assert.Zero(t, overrideRows)

	assert.ErrorIs(t, repo.Delete(ctx, 1, member.ID()), authz.ErrMemberNotFound)
}

func TestSubscriptionRepository_GetByTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	missing, err := repo.GetByTenant(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	expires := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, db.Create(&models.SubscriptionModel{
		TenantID:  1,
		PlanID:    "business",
		Status:    "active",
		StartDate: time.Now().Add(-24 * time.Hour),
		ExpiresAt: &expires,
	}).Error)

	sub, err := repo.GetByTenant(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "business", sub.PlanID())
	assert.Equal(t, billing.SubscriptionStatusActive, sub.Status())
	assert.True(t, sub.IsActive(time.Now()))
}

func TestFeatureUsageRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeatureUsageRepository(db)
	ctx := context.Background()

	// A tenant without a row starts from zeroed counters.
	usage, err := repo.GetByTenant(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Zero(t, usage.Members())

	usage.Increment(billing.QuotaMembers)
	usage.Increment(billing.QuotaCustomRoles)
	require.NoError(t, repo.Save(ctx, usage))

	usage.Increment(billing.QuotaMembers)
	require.NoError(t, repo.Save(ctx, usage))

	reloaded, err := repo.GetByTenant(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Members())
	assert.Equal(t, 1, reloaded.CustomRoles())

	var rows int64
	require.NoError(t, db.Model(&models.FeatureUsageModel{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
