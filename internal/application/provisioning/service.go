package provisioning

import (
	"context"
	"fmt"
	"time"

	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/tenantlock"
)

// InviteNotifier delivers the invitation email after a successful invite
// commit. Delivery is best effort and never fails the commit.
type InviteNotifier interface {
	SendMemberInvite(to string) error
}

// Service creates and commits provisioning workflows. It is the only writer
// of member rows and account override entries in the system.
type Service struct {
	roleRepo     authz.RoleRepository
	memberRepo   authz.MemberRepository
	entitlements *appbilling.EntitlementService
	locks        *tenantlock.Registry
	notifier     InviteNotifier
	timeout      time.Duration
	logger       logger.Interface
}

func NewService(
	roleRepo authz.RoleRepository,
	memberRepo authz.MemberRepository,
	entitlements *appbilling.EntitlementService,
	locks *tenantlock.Registry,
	notifier InviteNotifier,
	timeout time.Duration,
	logger logger.Interface,
) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		roleRepo:     roleRepo,
		memberRepo:   memberRepo,
		entitlements: entitlements,
		locks:        locks,
		notifier:     notifier,
		timeout:      timeout,
		logger:       logger,
	}
}

func (s *Service) snapshot(ctx context.Context, tenantID uint) (*authz.TenantContext, error) {
	roles, err := s.roleRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	ent, err := s.entitlements.Refresh(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh entitlements: %w", err)
	}
	return authz.NewTenantContext(tenantID, roles, ent), nil
}

// NewInvite starts an invite workflow with an empty draft.
func (s *Service) NewInvite(ctx context.Context, tenantID uint) (*Workflow, error) {
	tc, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	commit := func(ctx context.Context, _ Mode, draft *Draft) (*authz.Member, error) {
		return s.commitInvite(ctx, tenantID, draft)
	}
	return newWorkflow(ModeInvite, tc, newDraft(), commit, s.timeout, s.logger), nil
}

// NewEdit starts an edit workflow with the draft prefilled from the member's
// current profile.
func (s *Service) NewEdit(ctx context.Context, tenantID, memberID uint) (*Workflow, error) {
	tc, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(ctx, tenantID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: id %d", authz.ErrMemberNotFound, memberID)
	}
	commit := func(ctx context.Context, _ Mode, draft *Draft) (*authz.Member, error) {
		return s.commitEdit(ctx, tenantID, draft)
	}
	return newWorkflow(ModeEdit, tc, draftFromMember(member), commit, s.timeout, s.logger), nil
}

// commitInvite flushes an invite draft: the member-quota check and the
// creation that follows run under the tenant write lock as one atomic step.
func (s *Service) commitInvite(ctx context.Context, tenantID uint, draft *Draft) (*authz.Member, error) {
	unlock := s.locks.Lock(tenantID)
	defer unlock()

	ent, err := s.entitlements.Refresh(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh entitlements: %w", err)
	}
	if !ent.CanCreate(billing.QuotaMembers) {
		limit, _ := ent.PlanLimits().Limit(billing.QuotaMembers)
		used := ent.Usage().Count(billing.QuotaMembers)
		return nil, billing.ErrQuotaExceededFor(billing.QuotaMembers, used, limit)
	}

	existing, err := s.memberRepo.GetByEmail(ctx, tenantID, draft.email)
	if err != nil {
		return nil, fmt.Errorf("failed to check member email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrMemberEmailTaken, draft.email)
	}

	member, err := authz.NewMember(draft.email, draft.roleIDs())
	if err != nil {
		return nil, err
	}
	for _, accountID := range draft.overriddenAccountIDs() {
		member.SetOverride(accountID, draft.accountConfigs[accountID].Permissions())
	}

	if err := s.memberRepo.Create(ctx, tenantID, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	if err := s.entitlements.RecordCreation(ctx, tenantID, billing.QuotaMembers); err != nil {
		return nil, fmt.Errorf("failed to record member usage: %w", err)
	}

	if s.notifier != nil {
		go func(to string) {
			if err := s.notifier.SendMemberInvite(to); err != nil {
				s.logger.Warnw("failed to send invite email", "email", to, "error", err)
			}
		}(member.Email())
	}

	return member, nil
}

// commitEdit replaces the member's role set and override configs with the
// draft's. Overrides absent from the draft are cleared; present ones are
// stored as the exact sets the draft holds.
func (s *Service) commitEdit(ctx context.Context, tenantID uint, draft *Draft) (*authz.Member, error) {
	unlock := s.locks.Lock(tenantID)
	defer unlock()

	member, err := s.memberRepo.GetByID(ctx, tenantID, draft.memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: id %d", authz.ErrMemberNotFound, draft.memberID)
	}

	member.SetRoles(draft.roleIDs())

	for _, accountID := range member.OverriddenAccountIDs() {
		if _, keep := draft.accountConfigs[accountID]; !keep {
			member.ClearOverride(accountID)
		}
	}
	for _, accountID := range draft.overriddenAccountIDs() {
		member.ClearOverride(accountID)
		member.SetOverride(accountID, draft.accountConfigs[accountID].Permissions())
	}

	if err := s.memberRepo.Update(ctx, tenantID, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}
