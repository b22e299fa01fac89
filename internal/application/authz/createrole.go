// Package authz provides the application-level use cases for role management
// and the permission query service consumed by the HTTP layer.
package authz

import (
	"context"
	"fmt"

	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/tenantlock"
)

type CreateRoleCommand struct {
	TenantID    uint
	Name        string
	Description string
	Permissions map[string][]string
}

type CreateRoleUseCase struct {
	roleRepo     authz.RoleRepository
	entitlements *appbilling.EntitlementService
	locks        *tenantlock.Registry
	logger       logger.Interface
}

func NewCreateRoleUseCase(
	roleRepo authz.RoleRepository,
	entitlements *appbilling.EntitlementService,
	locks *tenantlock.Registry,
	logger logger.Interface,
) *CreateRoleUseCase {
	return &CreateRoleUseCase{
		roleRepo:     roleRepo,
		entitlements: entitlements,
		locks:        locks,
		logger:       logger,
	}
}

func (uc *CreateRoleUseCase) Execute(ctx context.Context, cmd CreateRoleCommand) (*authz.Role, error) {
	unlock := uc.locks.Lock(cmd.TenantID)
	defer unlock()

	ent, err := uc.entitlements.Refresh(ctx, cmd.TenantID)
	if err != nil {
		uc.logger.Errorw("failed to refresh entitlements", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to refresh entitlements: %w", err)
	}
	if !ent.CanCreate(billing.QuotaCustomRoles) {
		limit, _ := ent.PlanLimits().Limit(billing.QuotaCustomRoles)
		used := ent.Usage().Count(billing.QuotaCustomRoles)
		return nil, billing.ErrQuotaExceededFor(billing.QuotaCustomRoles, used, limit)
	}

	permissions, err := authz.ParsePermissionMap(cmd.Permissions)
	if err != nil {
		return nil, err
	}

	role, err := authz.NewRole(cmd.Name, cmd.Description, permissions)
	if err != nil {
		return nil, err
	}

	if err := uc.roleRepo.Create(ctx, cmd.TenantID, role); err != nil {
		uc.logger.Errorw("failed to persist role", "error", err, "tenant_id", cmd.TenantID, "name", cmd.Name)
		return nil, fmt.Errorf("failed to persist role: %w", err)
	}

	if err := uc.entitlements.RecordCreation(ctx, cmd.TenantID, billing.QuotaCustomRoles); err != nil {
		uc.logger.Errorw("failed to record custom role usage", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to record custom role usage: %w", err)
	}

	uc.logger.Infow("custom role created", "tenant_id", cmd.TenantID, "role_id", role.ID(), "name", role.Name())
	return role, nil
}
