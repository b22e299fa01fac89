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

type DeleteRoleCommand struct {
	TenantID uint
	RoleID   uint
}

// DeleteRoleUseCase deletes a custom role. Deletion cascades: the role id is
// unassigned from every member holding it. Account override seeds taken from
// the role earlier are snapshots and stay untouched.
type DeleteRoleUseCase struct {
	roleRepo     authz.RoleRepository
	entitlements *appbilling.EntitlementService
	locks        *tenantlock.Registry
	logger       logger.Interface
}

func NewDeleteRoleUseCase(
	roleRepo authz.RoleRepository,
	entitlements *appbilling.EntitlementService,
	locks *tenantlock.Registry,
	logger logger.Interface,
) *DeleteRoleUseCase {
	return &DeleteRoleUseCase{
		roleRepo:     roleRepo,
		entitlements: entitlements,
		locks:        locks,
		logger:       logger,
	}
}

func (uc *DeleteRoleUseCase) Execute(ctx context.Context, cmd DeleteRoleCommand) error {
	unlock := uc.locks.Lock(cmd.TenantID)
	defer unlock()

	role, err := uc.roleRepo.GetByID(ctx, cmd.TenantID, cmd.RoleID)
	if err != nil {
		uc.logger.Errorw("failed to get role", "error", err, "tenant_id", cmd.TenantID, "role_id", cmd.RoleID)
		return fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return fmt.Errorf("%w: id %d", authz.ErrRoleNotFound, cmd.RoleID)
	}
	if role.IsSystem() {
		return authz.ErrSystemRoleImmutable
	}

	assigned, err := uc.roleRepo.CountAssignedMembers(ctx, cmd.TenantID, cmd.RoleID)
	if err != nil {
		return fmt.Errorf("failed to count role assignments: %w", err)
	}
	if assigned > 0 {
		if err := uc.roleRepo.UnassignFromAllMembers(ctx, cmd.TenantID, cmd.RoleID); err != nil {
			uc.logger.Errorw("failed to cascade role unassignment", "error", err, "tenant_id", cmd.TenantID, "role_id", cmd.RoleID)
			return fmt.Errorf("failed to cascade role unassignment: %w", err)
		}
	}

	if err := uc.roleRepo.Delete(ctx, cmd.TenantID, cmd.RoleID); err != nil {
		uc.logger.Errorw("failed to delete role", "error", err, "tenant_id", cmd.TenantID, "role_id", cmd.RoleID)
		return fmt.Errorf("failed to delete role: %w", err)
	}

	if err := uc.entitlements.RecordDeletion(ctx, cmd.TenantID, billing.QuotaCustomRoles); err != nil {
		uc.logger.Errorw("failed to record custom role usage", "error", err, "tenant_id", cmd.TenantID)
		return fmt.Errorf("failed to record custom role usage: %w", err)
	}

	uc.logger.Infow("custom role deleted", "tenant_id", cmd.TenantID, "role_id", cmd.RoleID, "unassigned_members", assigned)
	return nil
}
