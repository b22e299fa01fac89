package authz

import (
	"context"
	"fmt"

	"fiscus/internal/domain/authz"
	"fiscus/internal/shared/logger"
)

type ListRolesUseCase struct {
	roleRepo authz.RoleRepository
	logger   logger.Interface
}

func NewListRolesUseCase(roleRepo authz.RoleRepository, logger logger.Interface) *ListRolesUseCase {
	return &ListRolesUseCase{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// Execute returns the tenant's roles in insertion order, system roles first.
func (uc *ListRolesUseCase) Execute(ctx context.Context, tenantID uint) ([]*authz.Role, error) {
	roles, err := uc.roleRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		uc.logger.Errorw("failed to list roles", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}
