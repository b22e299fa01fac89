package authz

// AccountPermissionConfig is a per-account permission override. Its presence
// means the account no longer inherits from the member's role union for
// transaction-level data: the effective set is permissions minus denied.
//
// The denied set currently has no producer; it is carried (and subtracted)
// so explicit-deny semantics can be layered on later without a schema change.
type AccountPermissionConfig struct {
	accountID   uint
	permissions ActionSet
	denied      ActionSet
}

// NewAccountPermissionConfig begins an override seeded from the given
// permission set. The seed is a snapshot, not a live reference to any role.
func NewAccountPermissionConfig(accountID uint, seed ActionSet) *AccountPermissionConfig {
	if seed == nil {
		seed = NewActionSet()
	}
	return &AccountPermissionConfig{
		accountID:   accountID,
		permissions: seed.Clone(),
		denied:      NewActionSet(),
	}
}

func ReconstructAccountPermissionConfig(accountID uint, permissions, denied ActionSet) *AccountPermissionConfig {
	if permissions == nil {
		permissions = NewActionSet()
	}
	if denied == nil {
		denied = NewActionSet()
	}
	return &AccountPermissionConfig{
		accountID:   accountID,
		permissions: permissions,
		denied:      denied,
	}
}

func (c *AccountPermissionConfig) AccountID() uint {
	return c.accountID
}

func (c *AccountPermissionConfig) Permissions() ActionSet {
	return c.permissions.Clone()
}

func (c *AccountPermissionConfig) Denied() ActionSet {
	return c.denied.Clone()
}

// Effective returns permissions minus denied.
func (c *AccountPermissionConfig) Effective() ActionSet {
	return c.permissions.Subtract(c.denied)
}

// Toggle flips membership of action in the allow set and reports whether the
// action is granted afterwards.
func (c *AccountPermissionConfig) Toggle(action Action) bool {
	return c.permissions.Toggle(action)
}

func (c *AccountPermissionConfig) Clone() *AccountPermissionConfig {
	return &AccountPermissionConfig{
		accountID:   c.accountID,
		permissions: c.permissions.Clone(),
		denied:      c.denied.Clone(),
	}
}
