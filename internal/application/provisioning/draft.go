package provisioning

import (
	"fmt"
	"sort"
	"strings"

	"fiscus/internal/domain/authz"
)

type Mode string

const (
	ModeInvite Mode = "invite"
	ModeEdit   Mode = "edit"
)

// Draft is the candidate permission profile a workflow builds up: the
// member's email, selected roles, and per-account override configs. It is
// owned by exactly one workflow instance and mutated only in the editing
// state.
type Draft struct {
	memberID       uint
	email          string
	selectedRoles  map[uint]struct{}
	accountConfigs map[uint]*authz.AccountPermissionConfig
}

func newDraft() *Draft {
	return &Draft{
		selectedRoles:  make(map[uint]struct{}),
		accountConfigs: make(map[uint]*authz.AccountPermissionConfig),
	}
}

func draftFromMember(member *authz.Member) *Draft {
	d := newDraft()
	d.memberID = member.ID()
	d.email = member.Email()
	for _, id := range member.RoleIDs() {
		d.selectedRoles[id] = struct{}{}
	}
	for _, override := range member.Overrides() {
		d.accountConfigs[override.AccountID()] = override.Clone()
	}
	return d
}

func (d *Draft) roleIDs() []uint {
	out := make([]uint, 0, len(d.selectedRoles))
	for id := range d.selectedRoles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Draft) overriddenAccountIDs() []uint {
	out := make([]uint, 0, len(d.accountConfigs))
	for id := range d.accountConfigs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// validate is the gate for leaving the editing state. Invite additionally
// requires at least one account to be configured; a later edit does not.
// The asymmetry is intentional: first-time provisioning forces an explicit
// account decision, adjustments do not.
func (d *Draft) validate(mode Mode) error {
	if strings.TrimSpace(d.email) == "" {
		return fmt.Errorf("%w: email is required", ErrDraftInvalid)
	}
	if len(d.selectedRoles) == 0 {
		return fmt.Errorf("%w: at least one role must be selected", ErrDraftInvalid)
	}
	if mode == ModeInvite && len(d.accountConfigs) == 0 {
		return fmt.Errorf("%w: at least one account must be configured", ErrDraftInvalid)
	}
	return nil
}

// AccountConfigSnapshot is the read-only rendering of one account override
// in a draft snapshot.
type AccountConfigSnapshot struct {
	AccountID uint           `json:"account_id"`
	Actions   []authz.Action `json:"actions"`
}

// DraftSnapshot is an immutable copy of the draft for rendering; mutating it
// has no effect on the workflow.
type DraftSnapshot struct {
	MemberID uint                    `json:"member_id,omitempty"`
	Email    string                  `json:"email"`
	RoleIDs  []uint                  `json:"role_ids"`
	Accounts []AccountConfigSnapshot `json:"accounts"`
}

func (d *Draft) snapshot() DraftSnapshot {
	accounts := make([]AccountConfigSnapshot, 0, len(d.accountConfigs))
	for _, accountID := range d.overriddenAccountIDs() {
		accounts = append(accounts, AccountConfigSnapshot{
			AccountID: accountID,
			Actions:   d.accountConfigs[accountID].Effective().Actions(),
		})
	}
	return DraftSnapshot{
		MemberID: d.memberID,
		Email:    d.email,
		RoleIDs:  d.roleIDs(),
		Accounts: accounts,
	}
}
