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

type MemberRepositoryImpl struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) authz.MemberRepository {
	return &MemberRepositoryImpl{db: db}
}

func actionsToJSON(set authz.ActionSet) (datatypes.JSON, error) {
	list := make([]string, 0, len(set))
	for _, a := range set.Actions() {
		list = append(list, a.String())
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions: %w", err)
	}
	return datatypes.JSON(data), nil
}

func actionsFromJSON(data datatypes.JSON) (authz.ActionSet, error) {
	set := authz.NewActionSet()
	if len(data) == 0 {
		return set, nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}
	for _, a := range list {
		set.Add(authz.Action(a))
	}
	return set, nil
}

func (r *MemberRepositoryImpl) loadMember(ctx context.Context, tx *gorm.DB, model *models.MemberModel) (*authz.Member, error) {
	var roleRows []*models.MemberRoleModel
	if err := tx.WithContext(ctx).Where("member_id = ?", model.ID).Find(&roleRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load member roles: %w", err)
	}
	roleIDs := make([]uint, 0, len(roleRows))
	for _, row := range roleRows {
		roleIDs = append(roleIDs, row.RoleID)
	}

	var overrideRows []*models.AccountOverrideModel
	if err := tx.WithContext(ctx).Where("member_id = ?", model.ID).Find(&overrideRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load account overrides: %w", err)
	}
	overrides := make([]*authz.AccountPermissionConfig, 0, len(overrideRows))
	for _, row := range overrideRows {
		permissions, err := actionsFromJSON(row.Permissions)
		if err != nil {
			return nil, err
		}
		denied, err := actionsFromJSON(row.Denied)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, authz.ReconstructAccountPermissionConfig(row.AccountID, permissions, denied))
	}

	return authz.ReconstructMember(
		model.ID,
		model.Email,
		authz.MemberStatus(model.Status),
		roleIDs,
		overrides,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// saveAssociations replaces the member's role assignment and override rows
// with the member's current state.
func (r *MemberRepositoryImpl) saveAssociations(ctx context.Context, tx *gorm.DB, member *authz.Member) error {
	if err := tx.WithContext(ctx).Where("member_id = ?", member.ID()).
		Delete(&models.MemberRoleModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear member roles: %w", err)
	}
	roleIDs := member.RoleIDs()
	if len(roleIDs) > 0 {
		rows := make([]*models.MemberRoleModel, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			rows = append(rows, &models.MemberRoleModel{MemberID: member.ID(), RoleID: roleID})
		}
		if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save member roles: %w", err)
		}
	}

	if err := tx.WithContext(ctx).Where("member_id = ?", member.ID()).
		Delete(&models.AccountOverrideModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear account overrides: %w", err)
	}
	overrides := member.Overrides()
	if len(overrides) > 0 {
		rows := make([]*models.AccountOverrideModel, 0, len(overrides))
		for _, override := range overrides {
			permissions, err := actionsToJSON(override.Permissions())
			if err != nil {
				return err
			}
			denied, err := actionsToJSON(override.Denied())
			if err != nil {
				return err
			}
			rows = append(rows, &models.AccountOverrideModel{
				MemberID:    member.ID(),
				AccountID:   override.AccountID(),
				Permissions: permissions,
				Denied:      denied,
			})
		}
		if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save account overrides: %w", err)
		}
	}
	return nil
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, tenantID uint, member *authz.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := &models.MemberModel{
			TenantID: tenantID,
			Email:    member.Email(),
			Status:   string(member.Status()),
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
		if err := member.SetID(model.ID); err != nil {
			return err
		}
		return r.saveAssociations(ctx, tx, member)
	})
}

func (r *MemberRepositoryImpl) GetByID(ctx context.Context, tenantID, id uint) (*authz.Member, error) {
	var model models.MemberModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return r.loadMember(ctx, r.db, &model)
}

func (r *MemberRepositoryImpl) GetByEmail(ctx context.Context, tenantID uint, email string) (*authz.Member, error) {
	var model models.MemberModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}
	return r.loadMember(ctx, r.db, &model)
}

func (r *MemberRepositoryImpl) ListByTenant(ctx context.Context, tenantID uint) ([]*authz.Member, error) {
	var memberModels []*models.MemberModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&memberModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]*authz.Member, 0, len(memberModels))
	for _, model := range memberModels {
		member, err := r.loadMember(ctx, r.db, model)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func (r *MemberRepositoryImpl) Update(ctx context.Context, tenantID uint, member *authz.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.MemberModel{}).
			Where("tenant_id = ? AND id = ?", tenantID, member.ID()).
			Updates(map[string]interface{}{
				"email":      member.Email(),
				"status":     string(member.Status()),
				"updated_at": member.UpdatedAt(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update member: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", authz.ErrMemberNotFound, member.ID())
		}
		return r.saveAssociations(ctx, tx, member)
	})
}

func (r *MemberRepositoryImpl) Delete(ctx context.Context, tenantID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&models.MemberModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete member: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", authz.ErrMemberNotFound, id)
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.MemberRoleModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear member roles: %w", err)
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.AccountOverrideModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear account overrides: %w", err)
		}
		return nil
	})
}
