package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fiscus/internal/domain/authz"
	"fiscus/internal/infrastructure/persistence/models"
)

type RoleRepositoryImpl struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) authz.RoleRepository {
	return &RoleRepositoryImpl{db: db}
}

func permissionsToJSON(permissions authz.PermissionMap) (datatypes.JSON, error) {
	raw := make(map[string][]string, len(permissions))
	for resource, actions := range permissions {
		list := make([]string, 0, len(actions))
		for _, a := range actions.Actions() {
			list = append(list, a.String())
		}
		raw[resource.String()] = list
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}
	return datatypes.JSON(data), nil
}

func permissionsFromJSON(data datatypes.JSON) (authz.PermissionMap, error) {
	out := make(authz.PermissionMap)
	if len(data) == 0 {
		return out, nil
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	for resource, actions := range raw {
		set := authz.NewActionSet()
		for _, a := range actions {
			set.Add(authz.Action(a))
		}
		out[authz.Resource(resource)] = set
	}
	return out, nil
}

func reconstructRole(model *models.RoleModel) (*authz.Role, error) {
	permissions, err := permissionsFromJSON(model.Permissions)
	if err != nil {
		return nil, err
	}
	return authz.ReconstructRole(
		model.ID,
		model.Name,
		model.Description,
		model.IsSystem,
		permissions,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, tenantID uint, role *authz.Role) error {
	permissions, err := permissionsToJSON(role.Permissions())
	if err != nil {
		return err
	}
	model := &models.RoleModel{
		TenantID:    tenantID,
		Name:        role.Name(),
		Description: role.Description(),
		IsSystem:    role.IsSystem(),
		Permissions: permissions,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return role.SetID(model.ID)
}

func (r *RoleRepositoryImpl) GetByID(ctx context.Context, tenantID, id uint) (*authz.Role, error) {
	var model models.RoleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return reconstructRole(&model)
}

func (r *RoleRepositoryImpl) ListByTenant(ctx context.Context, tenantID uint) ([]*authz.Role, error) {
	var roleModels []*models.RoleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("is_system DESC, id ASC").
		Find(&roleModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	roles := make([]*authz.Role, 0, len(roleModels))
	for _, model := range roleModels {
		role, err := reconstructRole(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, tenantID uint, role *authz.Role) error {
	permissions, err := permissionsToJSON(role.Permissions())
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, role.ID()).
		Updates(map[string]interface{}{
			"name":        role.Name(),
			"description": role.Description(),
			"permissions": permissions,
			"updated_at":  role.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", authz.ErrRoleNotFound, role.ID())
	}
	return nil
}

func (r *RoleRepositoryImpl) Delete(ctx context.Context, tenantID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.RoleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", authz.ErrRoleNotFound, id)
	}
	return nil
}

func (r *RoleRepositoryImpl) UnassignFromAllMembers(ctx context.Context, tenantID, roleID uint) error {
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND member_id IN (?)", roleID,
			r.db.Model(&models.MemberModel{}).Select("id").Where("tenant_id = ?", tenantID)).
		Delete(&models.MemberRoleModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to unassign role from members: %w", err)
	}
	return nil
}

func (r *RoleRepositoryImpl) CountAssignedMembers(ctx context.Context, tenantID, roleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MemberRoleModel{}).
		Where("role_id = ? AND member_id IN (?)", roleID,
			r.db.Model(&models.MemberModel{}).Select("id").Where("tenant_id = ?", tenantID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count role assignments: %w", err)
	}
	return count, nil
}
