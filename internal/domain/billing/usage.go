package billing

// FeatureUsage holds a tenant's live counters for each quota-bound resource
// type. Mutation happens only under the tenant's write lock so that a quota
// check and the increment that follows form one atomic step.
type FeatureUsage struct {
	tenantID      uint
	members       int
	accounts      int
	organizations int
	customRoles   int
}

func NewFeatureUsage(tenantID uint) *FeatureUsage {
	return &FeatureUsage{tenantID: tenantID}
}

func ReconstructFeatureUsage(tenantID uint, members, accounts, organizations, customRoles int) *FeatureUsage {
	return &FeatureUsage{
		tenantID:      tenantID,
		members:       members,
		accounts:      accounts,
		organizations: organizations,
		customRoles:   customRoles,
	}
}

func (u *FeatureUsage) TenantID() uint {
	return u.tenantID
}

func (u *FeatureUsage) Members() int {
	return u.members
}

func (u *FeatureUsage) Accounts() int {
	return u.accounts
}

func (u *FeatureUsage) Organizations() int {
	return u.organizations
}

func (u *FeatureUsage) CustomRoles() int {
	return u.customRoles
}

// Count returns the live counter for a quota type. Unknown types count as
// zero; CanCreate fails closed on its own limit lookup.
func (u *FeatureUsage) Count(qt QuotaType) int {
	switch qt {
	case QuotaMembers:
		return u.members
	case QuotaAccounts:
		return u.accounts
	case QuotaOrganizations:
		return u.organizations
	case QuotaCustomRoles:
		return u.customRoles
	default:
		return 0
	}
}

func (u *FeatureUsage) Increment(qt QuotaType) {
	u.add(qt, 1)
}

func (u *FeatureUsage) Decrement(qt QuotaType) {
	u.add(qt, -1)
}

func (u *FeatureUsage) add(qt QuotaType, delta int) {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	switch qt {
	case QuotaMembers:
		u.members = clamp(u.members + delta)
	case QuotaAccounts:
		u.accounts = clamp(u.accounts + delta)
	case QuotaOrganizations:
		u.organizations = clamp(u.organizations + delta)
	case QuotaCustomRoles:
		u.customRoles = clamp(u.customRoles + delta)
	}
}

func (u *FeatureUsage) Clone() *FeatureUsage {
	c := *u
	return &c
}
