package models

import (
	"time"

	"gorm.io/datatypes"

	"fiscus/internal/shared/constants"
)

type RoleModel struct {
	ID          uint   `gorm:"primarykey"`
	TenantID    uint   `gorm:"index:idx_roles_tenant;not null"`
	Name        string `gorm:"not null;size:50"`
	Description string `gorm:"type:text"`
	IsSystem    bool   `gorm:"default:false"`
	Permissions datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RoleModel) TableName() string {
	return constants.TableRoles
}
