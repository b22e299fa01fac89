package authz

import (
	"context"
	"fmt"

	"fiscus/internal/domain/authz"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/tenantlock"
)

// UpdateRoleCommand patches a custom role; nil fields are left unchanged.
type UpdateRoleCommand struct {
	TenantID    uint
	RoleID      uint
	Name        *string
	Description *string
	Permissions map[string][]string
}

type UpdateRoleUseCase struct {
	roleRepo authz.RoleRepository
	locks    *tenantlock.Registry
	logger   logger.Interface
}

func NewUpdateRoleUseCase(roleRepo authz.RoleRepository, locks *tenantlock.Registry, logger logger.Interface) *UpdateRoleUseCase {
	return &UpdateRoleUseCase{
		roleRepo: roleRepo,
		locks:    locks,
		logger:   logger,
	}
}

func (uc *UpdateRoleUseCase) Execute(ctx context.Context, cmd UpdateRoleCommand) (*authz.Role, error) {
	unlock := uc.locks.Lock(cmd.TenantID)
	defer unlock()

	role, err := uc.roleRepo.GetByID(ctx, cmd.TenantID, cmd.RoleID)
	if err != nil {
		uc.logger.Errorw("failed to get role", "error", err, "tenant_id", cmd.TenantID, "role_id", cmd.RoleID)
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, fmt.Errorf("%w: id %d", authz.ErrRoleNotFound, cmd.RoleID)
	}
	if role.IsSystem() {
		return nil, authz.ErrSystemRoleImmutable
	}

	if cmd.Name != nil {
		if err := role.Rename(*cmd.Name); err != nil {
			return nil, err
		}
	}
	if cmd.Description != nil {
		if err := role.UpdateDescription(*cmd.Description); err != nil {
			return nil, err
		}
	}
	if cmd.Permissions != nil {
		permissions, err := authz.ParsePermissionMap(cmd.Permissions)
		if err != nil {
			return nil, err
		}
		if err := role.SetPermissions(permissions); err != nil {
			return nil, err
		}
	}

	if err := uc.roleRepo.Update(ctx, cmd.TenantID, role); err != nil {
		uc.logger.Errorw("failed to update role", "error", err, "tenant_id", cmd.TenantID, "role_id", cmd.RoleID)
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	uc.logger.Infow("role updated", "tenant_id", cmd.TenantID, "role_id", role.ID())
	return role, nil
}
