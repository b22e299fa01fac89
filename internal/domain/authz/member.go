package authz

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "active"
	MemberStatusPending MemberStatus = "pending"
	MemberStatusRemoved MemberStatus = "removed"
)

// Member is a tenant user as the authorization engine sees it: an email, a
// set of role ids, and per-account permission overrides. A member with zero
// roles simply has no role-derived grants; that is not an error state.
type Member struct {
	id        uint
	email     string
	status    MemberStatus
	roleIDs   map[uint]struct{}
	overrides map[uint]*AccountPermissionConfig
	createdAt time.Time
	updatedAt time.Time
}

func NewMember(email string, roleIDs []uint) (*Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("member email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid member email: %s", email)
	}

	roles := make(map[uint]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		roles[id] = struct{}{}
	}

	now := time.Now()
	return &Member{
		email:     email,
		status:    MemberStatusPending,
		roleIDs:   roles,
		overrides: make(map[uint]*AccountPermissionConfig),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructMember(id uint, email string, status MemberStatus, roleIDs []uint,
	overrides []*AccountPermissionConfig, createdAt, updatedAt time.Time) (*Member, error) {

	if id == 0 {
		return nil, fmt.Errorf("member ID cannot be zero")
	}

	roles := make(map[uint]struct{}, len(roleIDs))
	for _, rid := range roleIDs {
		roles[rid] = struct{}{}
	}
	byAccount := make(map[uint]*AccountPermissionConfig, len(overrides))
	for _, o := range overrides {
		byAccount[o.AccountID()] = o
	}

	return &Member{
		id:        id,
		email:     email,
		status:    status,
		roleIDs:   roles,
		overrides: byAccount,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (m *Member) ID() uint {
	return m.id
}

func (m *Member) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("member ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("member ID cannot be zero")
	}
	m.id = id
	return nil
}

func (m *Member) Email() string {
	return m.email
}

func (m *Member) Status() MemberStatus {
	return m.status
}

func (m *Member) Activate() {
	m.status = MemberStatusActive
	m.updatedAt = time.Now()
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}

func (m *Member) HasRole(roleID uint) bool {
	_, ok := m.roleIDs[roleID]
	return ok
}

// RoleIDs returns the member's role ids in ascending order.
func (m *Member) RoleIDs() []uint {
	out := make([]uint, 0, len(m.roleIDs))
	for id := range m.roleIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Member) AssignRole(roleID uint) {
	m.roleIDs[roleID] = struct{}{}
	m.updatedAt = time.Now()
}

func (m *Member) UnassignRole(roleID uint) {
	delete(m.roleIDs, roleID)
	m.updatedAt = time.Now()
}

func (m *Member) SetRoles(roleIDs []uint) {
	m.roleIDs = make(map[uint]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		m.roleIDs[id] = struct{}{}
	}
	m.updatedAt = time.Now()
}

// Override returns the account's override config, or nil when the account
// inherits the role-derived default.
func (m *Member) Override(accountID uint) *AccountPermissionConfig {
	return m.overrides[accountID]
}

func (m *Member) IsOverridden(accountID uint) bool {
	_, ok := m.overrides[accountID]
	return ok
}

// OverriddenAccountIDs returns the overridden account ids in ascending order.
func (m *Member) OverriddenAccountIDs() []uint {
	out := make([]uint, 0, len(m.overrides))
	for id := range m.overrides {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Overrides returns the member's override configs keyed by account id.
func (m *Member) Overrides() []*AccountPermissionConfig {
	out := make([]*AccountPermissionConfig, 0, len(m.overrides))
	for _, id := range m.OverriddenAccountIDs() {
		out = append(out, m.overrides[id])
	}
	return out
}

// SetOverride begins an override for the account, seeded from seed. Calling
// it again for an already-overridden account is a no-op.
func (m *Member) SetOverride(accountID uint, seed ActionSet) {
	if _, ok := m.overrides[accountID]; ok {
		return
	}
	m.overrides[accountID] = NewAccountPermissionConfig(accountID, seed)
	m.updatedAt = time.Now()
}

// ClearOverride removes the account's override; the account reverts to the
// role-derived default. Clearing a non-overridden account is a no-op.
func (m *Member) ClearOverride(accountID uint) {
	if _, ok := m.overrides[accountID]; !ok {
		return
	}
	delete(m.overrides, accountID)
	m.updatedAt = time.Now()
}

// TogglePermission flips an action in the account's override allow set. The
// account must already be overridden.
func (m *Member) TogglePermission(accountID uint, action Action) error {
	override, ok := m.overrides[accountID]
	if !ok {
		return fmt.Errorf("%w: account %d", ErrAccountNotOverridden, accountID)
	}
	override.Toggle(action)
	m.updatedAt = time.Now()
	return nil
}
