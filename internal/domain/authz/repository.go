package authz

import "context"

type RoleRepository interface {
	Create(ctx context.Context, tenantID uint, role *Role) error
	GetByID(ctx context.Context, tenantID, id uint) (*Role, error)
	// ListByTenant returns the tenant's roles in insertion order, system
	// roles first.
	ListByTenant(ctx context.Context, tenantID uint) ([]*Role, error)
	Update(ctx context.Context, tenantID uint, role *Role) error
	Delete(ctx context.Context, tenantID, id uint) error
	// UnassignFromAllMembers removes the role id from every member's role
	// set; the cascade half of role deletion.
	UnassignFromAllMembers(ctx context.Context, tenantID, roleID uint) error
	CountAssignedMembers(ctx context.Context, tenantID, roleID uint) (int64, error)
}

type MemberRepository interface {
	Create(ctx context.Context, tenantID uint, member *Member) error
	GetByID(ctx context.Context, tenantID, id uint) (*Member, error)
	GetByEmail(ctx context.Context, tenantID uint, email string) (*Member, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]*Member, error)
	// Update persists the member's profile including role assignments and
	// account overrides.
	Update(ctx context.Context, tenantID uint, member *Member) error
	Delete(ctx context.Context, tenantID, id uint) error
}
