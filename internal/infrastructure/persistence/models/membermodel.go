package models

import (
	"time"

	"gorm.io/datatypes"

	"fiscus/internal/shared/constants"
)

type MemberModel struct {
	ID        uint   `gorm:"primarykey"`
	TenantID  uint   `gorm:"uniqueIndex:idx_members_tenant_email;not null"`
	Email     string `gorm:"uniqueIndex:idx_members_tenant_email;not null;size:255"`
	Status    string `gorm:"not null;default:pending;size:20"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemberModel) TableName() string {
	return constants.TableMembers
}

type MemberRoleModel struct {
	MemberID  uint `gorm:"primarykey"`
	RoleID    uint `gorm:"primarykey;index:idx_member_roles_role"`
	CreatedAt time.Time
}

func (MemberRoleModel) TableName() string {
	return constants.TableMemberRoles
}

// AccountOverrideModel stores one member's permission override for one
// financial account. Permissions and Denied are JSON arrays of action names.
type AccountOverrideModel struct {
	ID          uint `gorm:"primarykey"`
	MemberID    uint `gorm:"uniqueIndex:idx_overrides_member_account;not null"`
	AccountID   uint `gorm:"uniqueIndex:idx_overrides_member_account;not null"`
	Permissions datatypes.JSON
	Denied      datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AccountOverrideModel) TableName() string {
	return constants.TableAccountOverrides
}
