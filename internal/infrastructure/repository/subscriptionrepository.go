package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fiscus/internal/domain/billing"
	"fiscus/internal/infrastructure/persistence/models"
)

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) billing.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) GetByTenant(ctx context.Context, tenantID uint) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return billing.ReconstructSubscription(
		model.TenantID,
		model.PlanID,
		billing.SubscriptionStatus(model.Status),
		model.StartDate,
		model.ExpiresAt,
		model.CancelledAt,
	)
}
