package models

import (
	"time"

	"fiscus/internal/shared/constants"
)

type SubscriptionModel struct {
	ID          uint   `gorm:"primarykey"`
	TenantID    uint   `gorm:"uniqueIndex;not null"`
	PlanID      string `gorm:"not null;size:50"`
	Status      string `gorm:"not null;default:active;size:20"`
	StartDate   time.Time
	ExpiresAt   *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

type FeatureUsageModel struct {
	ID            uint `gorm:"primarykey"`
	TenantID      uint `gorm:"uniqueIndex;not null"`
	Members       int  `gorm:"not null;default:0"`
	Accounts      int  `gorm:"not null;default:0"`
	Organizations int  `gorm:"not null;default:0"`
	CustomRoles   int  `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (FeatureUsageModel) TableName() string {
	return constants.TableFeatureUsage
}
