package authz

import (
	"fmt"
	"time"
)

// Role is a named, reusable bundle of resource grants. System roles are
// seeded at boot and never mutate; custom roles belong to the tenant.
type Role struct {
	id          uint
	name        string
	description string
	isSystem    bool
	permissions PermissionMap
	createdAt   time.Time
	updatedAt   time.Time
}

func NewRole(name, description string, permissions PermissionMap) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	if len(name) > 50 {
		return nil, fmt.Errorf("role name too long (max 50 characters)")
	}
	if permissions == nil {
		permissions = make(PermissionMap)
	}
	if err := permissions.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Role{
		name:        name,
		description: description,
		isSystem:    false,
		permissions: permissions.Clone(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewSystemRole builds one of the seeded immutable roles.
func NewSystemRole(name, description string, permissions PermissionMap) (*Role, error) {
	role, err := NewRole(name, description, permissions)
	if err != nil {
		return nil, err
	}
	role.isSystem = true
	return role, nil
}

func ReconstructRole(id uint, name, description string, isSystem bool,
	permissions PermissionMap, createdAt, updatedAt time.Time) (*Role, error) {

	if id == 0 {
		return nil, fmt.Errorf("role ID cannot be zero")
	}
	if permissions == nil {
		permissions = make(PermissionMap)
	}

	return &Role{
		id:          id,
		name:        name,
		description: description,
		isSystem:    isSystem,
		permissions: permissions,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (r *Role) ID() uint {
	return r.id
}

func (r *Role) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("role ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("role ID cannot be zero")
	}
	r.id = id
	return nil
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Description() string {
	return r.description
}

func (r *Role) IsSystem() bool {
	return r.isSystem
}

// Permissions returns a copy; callers cannot mutate the role through it.
func (r *Role) Permissions() PermissionMap {
	return r.permissions.Clone()
}

func (r *Role) ActionsFor(resource Resource) ActionSet {
	if actions, ok := r.permissions[resource]; ok {
		return actions.Clone()
	}
	return NewActionSet()
}

func (r *Role) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Role) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Role) Rename(name string) error {
	if r.isSystem {
		return ErrSystemRoleImmutable
	}
	if name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	if len(name) > 50 {
		return fmt.Errorf("role name too long (max 50 characters)")
	}
	r.name = name
	r.updatedAt = time.Now()
	return nil
}

func (r *Role) UpdateDescription(description string) error {
	if r.isSystem {
		return ErrSystemRoleImmutable
	}
	r.description = description
	r.updatedAt = time.Now()
	return nil
}

func (r *Role) SetPermissions(permissions PermissionMap) error {
	if r.isSystem {
		return ErrSystemRoleImmutable
	}
	if permissions == nil {
		permissions = make(PermissionMap)
	}
	if err := permissions.Validate(); err != nil {
		return err
	}
	r.permissions = permissions.Clone()
	r.updatedAt = time.Now()
	return nil
}
