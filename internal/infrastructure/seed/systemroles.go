// Package seed provisions the built-in system roles for a tenant. Seeding is
// idempotent: roles that already exist by name are left untouched.
package seed

import (
	"context"
	"fmt"

	"fiscus/internal/domain/authz"
	"fiscus/internal/shared/logger"
)

type systemRoleSpec struct {
	name        string
	description string
	permissions authz.PermissionMap
}

func fullAccess(resources ...authz.Resource) authz.PermissionMap {
	out := make(authz.PermissionMap, len(resources))
	for _, r := range resources {
		out[r] = authz.ValidActions(r)
	}
	return out
}

func viewOnly(resources ...authz.Resource) authz.PermissionMap {
	out := make(authz.PermissionMap, len(resources))
	for _, r := range resources {
		out[r] = authz.NewActionSet(authz.ActionView)
	}
	return out
}

func systemRoles() []systemRoleSpec {
	all := authz.AllResources()
	return []systemRoleSpec{
		{
			name:        "Owner",
			description: "Full access to every workspace resource including billing",
			permissions: fullAccess(all...),
		},
		{
			name:        "Admin",
			description: "Full access to workspace data and member management",
			permissions: fullAccess(
				authz.ResourceDashboard,
				authz.ResourceTransactions,
				authz.ResourceAccounts,
				authz.ResourceMembers,
				authz.ResourceRoles,
				authz.ResourceOrganizations,
			),
		},
		{
			name:        "Member",
			description: "Day-to-day access to transactions and accounts",
			permissions: authz.UnionPermissionMaps(
				fullAccess(authz.ResourceTransactions),
				viewOnly(authz.ResourceDashboard, authz.ResourceAccounts, authz.ResourceOrganizations),
			),
		},
		{
			name:        "Viewer",
			description: "Read-only access to workspace data",
			permissions: viewOnly(
				authz.ResourceDashboard,
				authz.ResourceTransactions,
				authz.ResourceAccounts,
				authz.ResourceOrganizations,
			),
		},
	}
}

// SystemRoles ensures the tenant has all built-in roles, creating any that
// are missing. Existing roles are matched by name and never modified.
func SystemRoles(ctx context.Context, repo authz.RoleRepository, tenantID uint, log logger.Interface) error {
	existing, err := repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list roles for seeding: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, role := range existing {
		if role.IsSystem() {
			present[role.Name()] = true
		}
	}

	for _, spec := range systemRoles() {
		if present[spec.name] {
			continue
		}
		role, err := authz.NewSystemRole(spec.name, spec.description, spec.permissions)
		if err != nil {
			return fmt.Errorf("failed to build system role %s: %w", spec.name, err)
		}
		if err := repo.Create(ctx, tenantID, role); err != nil {
			return fmt.Errorf("failed to seed system role %s: %w", spec.name, err)
		}
		log.Infow("system role seeded",
			"tenant_id", tenantID,
			"role", spec.name,
		)
	}
	return nil
}
