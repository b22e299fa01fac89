package provisioning

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not legal in the
	// workflow's current state.
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrConcurrentSubmit rejects a re-entrant confirm while a commit attempt
	// is already outstanding. The second call is rejected, never queued.
	ErrConcurrentSubmit = errors.New("submit already in progress")
	// ErrDraftInvalid is returned when the draft does not pass the validity
	// gate for leaving the editing state.
	ErrDraftInvalid = errors.New("draft is incomplete")
	// ErrTransientCommit wraps persistence failures during commit. The
	// workflow returns to the confirmation step; the operator may retry.
	ErrTransientCommit = errors.New("commit failed")
	// ErrMemberEmailTaken rejects an invite whose email already belongs to a
	// member of the tenant. The conflict is permanent, not retryable.
	ErrMemberEmailTaken = errors.New("member email already in use")
	// ErrEmailImmutable rejects email changes on an edit workflow.
	ErrEmailImmutable = errors.New("email cannot be changed when editing a member")
	// ErrWorkflowNotFound is returned by the registry for unknown ids.
	ErrWorkflowNotFound = errors.New("workflow not found")
)
