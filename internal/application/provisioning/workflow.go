// Package provisioning implements the stateful invite/edit workflow that
// builds a member's candidate permission profile and commits it atomically.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/id"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/utils"
)

type State string

const (
	StateEditing    State = "editing"
	StateConfirming State = "confirming"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Result reports a successful commit: the member id and email the caller
// needs for its success messaging.
type Result struct {
	MemberID uint   `json:"member_id"`
	Email    string `json:"email"`
}

// CommitFunc flushes a validated draft to storage and returns the committed
// member. It is supplied by the provisioning service.
type CommitFunc func(ctx context.Context, mode Mode, draft *Draft) (*authz.Member, error)

// Workflow is one invite or edit in progress. It is a client-held state
// machine: Editing -> Confirming -> Submitting -> Succeeded, with Failed
// re-entering the confirmation step so the operator can retry without
// re-entering the draft. Succeeded is terminal; a new instance serves the
// next invite or edit.
//
// All mutations go through the workflow's own mutex, so a re-entrant confirm
// during an outstanding commit is rejected rather than racing it.
type Workflow struct {
	mu sync.Mutex

	id      string
	mode    Mode
	state   State
	draft   *Draft
	tc      *authz.TenantContext
	commit  CommitFunc
	timeout time.Duration
	logger  logger.Interface

	lastErr error
	result  *Result
}

func newWorkflow(mode Mode, tc *authz.TenantContext, draft *Draft, commit CommitFunc, timeout time.Duration, log logger.Interface) *Workflow {
	return &Workflow{
		id:      id.MustGenerateWithPrefix(id.PrefixWorkflow, id.DefaultLength),
		mode:    mode,
		state:   StateEditing,
		draft:   draft,
		tc:      tc,
		commit:  commit,
		timeout: timeout,
		logger:  log,
	}
}

func (w *Workflow) ID() string {
	return w.id
}

func (w *Workflow) Mode() Mode {
	return w.mode
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot is the read model the invite/edit screens render.
type Snapshot struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	State     State         `json:"state"`
	Draft     DraftSnapshot `json:"draft"`
	LastError string        `json:"last_error,omitempty"`
	Result    *Result       `json:"result,omitempty"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		ID:     w.id,
		Mode:   w.mode,
		State:  w.state,
		Draft:  w.draft.snapshot(),
		Result: w.result,
	}
	if w.lastErr != nil {
		snap.LastError = w.lastErr.Error()
	}
	return snap
}

func (w *Workflow) requireEditing(op string) error {
	if w.state != StateEditing {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, w.state)
	}
	return nil
}

// SetEmail sets the invitee's address. The email is immutable on edit.
func (w *Workflow) SetEmail(email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditing("set email"); err != nil {
		return err
	}
	if w.mode == ModeEdit {
		return ErrEmailImmutable
	}
	if err := utils.ValidateEmail(email); err != nil {
		return err
	}
	w.draft.email = email
	return nil
}

// ToggleRole flips a role in the draft's selection. Deselecting a role does
// not touch already-overridden accounts: their stored permission sets are
// snapshots. It does change the seed used for accounts overridden later.
func (w *Workflow) ToggleRole(roleID uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditing("toggle role"); err != nil {
		return err
	}
	if w.tc.Role(roleID) == nil {
		return fmt.Errorf("%w: id %d", authz.ErrRoleNotFound, roleID)
	}
	if _, selected := w.draft.selectedRoles[roleID]; selected {
		delete(w.draft.selectedRoles, roleID)
	} else {
		w.draft.selectedRoles[roleID] = struct{}{}
	}
	return nil
}

// ToggleOverride turns an account's override on or off. Turning it on seeds
// the config from the union of the currently selected roles' account grants;
// turning it off reverts the account to role-derived defaults.
func (w *Workflow) ToggleOverride(accountID uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditing("toggle override"); err != nil {
		return err
	}
	if _, overridden := w.draft.accountConfigs[accountID]; overridden {
		delete(w.draft.accountConfigs, accountID)
		return nil
	}
	seed := w.tc.SeedForAccounts(w.draft.roleIDs())
	w.draft.accountConfigs[accountID] = authz.NewAccountPermissionConfig(accountID, seed)
	return nil
}

// TogglePermission flips one action in an account's override. An account
// that is not yet overridden is seeded first, so the first toggle on a fresh
// account starts from the role-derived default rather than an empty set.
func (w *Workflow) TogglePermission(accountID uint, action authz.Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditing("toggle permission"); err != nil {
		return err
	}
	if !authz.CatalogAllows(authz.ResourceTransactions, action) {
		return fmt.Errorf("%w: transactions:%s", authz.ErrInvalidPermission, action)
	}
	config, overridden := w.draft.accountConfigs[accountID]
	if !overridden {
		seed := w.tc.SeedForAccounts(w.draft.roleIDs())
		config = authz.NewAccountPermissionConfig(accountID, seed)
		w.draft.accountConfigs[accountID] = config
	}
	config.Toggle(action)
	return nil
}

// Next moves Editing -> Confirming once the draft passes the validity gate.
func (w *Workflow) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditing("advance"); err != nil {
		return err
	}
	if err := w.draft.validate(w.mode); err != nil {
		return err
	}
	w.state = StateConfirming
	return nil
}

// Cancel returns from the confirmation step (or a failed attempt) to
// Editing. The draft is kept.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateConfirming, StateFailed:
		w.state = StateEditing
		return nil
	default:
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, w.state)
	}
}

// Confirm launches the commit. Exactly one attempt may be outstanding: a
// second call while Submitting returns ErrConcurrentSubmit. On failure the
// workflow reports Failed and accepts another Confirm; on success it reaches
// the terminal Succeeded state.
func (w *Workflow) Confirm(ctx context.Context) (*Result, error) {
	w.mu.Lock()
	switch w.state {
	case StateSubmitting:
		w.mu.Unlock()
		return nil, ErrConcurrentSubmit
	case StateConfirming, StateFailed:
		// proceed
	default:
		state := w.state
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm while %s", ErrInvalidTransition, state)
	}
	w.state = StateSubmitting
	w.lastErr = nil
	draft := w.draft
	w.mu.Unlock()

	cctx := ctx
	cancel := func() {}
	if w.timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, w.timeout)
	}
	member, err := w.commit(cctx, w.mode, draft)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.lastErr = classifyCommitError(err)
		w.state = StateFailed
		w.logger.Warnw("workflow commit failed",
			"workflow_id", w.id, "mode", w.mode, "error", err)
		return nil, w.lastErr
	}

	w.state = StateSucceeded
	w.result = &Result{MemberID: member.ID(), Email: member.Email()}
	w.logger.Infow("workflow committed",
		"workflow_id", w.id, "mode", w.mode, "member_id", member.ID())
	return w.result, nil
}

// classifyCommitError keeps business rejections intact and folds everything
// else into the retryable transient class.
func classifyCommitError(err error) error {
	switch {
	case errors.Is(err, billing.ErrQuotaExceeded),
		errors.Is(err, authz.ErrRoleNotFound),
		errors.Is(err, authz.ErrMemberNotFound),
		errors.Is(err, authz.ErrInvalidPermission),
		errors.Is(err, ErrMemberEmailTaken):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrTransientCommit, err)
	}
}
