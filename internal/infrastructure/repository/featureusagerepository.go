package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fiscus/internal/domain/billing"
	"fiscus/internal/infrastructure/persistence/models"
)

type FeatureUsageRepositoryImpl struct {
	db *gorm.DB
}

func NewFeatureUsageRepository(db *gorm.DB) billing.FeatureUsageRepository {
	return &FeatureUsageRepositoryImpl{db: db}
}

func (r *FeatureUsageRepositoryImpl) GetByTenant(ctx context.Context, tenantID uint) (*billing.FeatureUsage, error) {
	var model models.FeatureUsageModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return billing.NewFeatureUsage(tenantID), nil
		}
		return nil, fmt.Errorf("failed to get feature usage: %w", err)
	}
	return billing.ReconstructFeatureUsage(
		model.TenantID,
		model.Members,
		model.Accounts,
		model.Organizations,
		model.CustomRoles,
	), nil
}

func (r *FeatureUsageRepositoryImpl) Save(ctx context.Context, usage *billing.FeatureUsage) error {
	model := &models.FeatureUsageModel{
		TenantID:      usage.TenantID(),
		Members:       usage.Members(),
		Accounts:      usage.Accounts(),
		Organizations: usage.Organizations(),
		CustomRoles:   usage.CustomRoles(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"members", "accounts", "organizations", "custom_roles", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save feature usage: %w", err)
	}
	return nil
}
