package authz

import (
	"context"
	"fmt"

	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/logger"
)

// Service answers the gating questions protected views ask. Every check
// assembles (or reuses) a tenant snapshot and delegates to the pure
// resolver; the service itself decides nothing.
type Service struct {
	roleRepo     authz.RoleRepository
	memberRepo   authz.MemberRepository
	entitlements *appbilling.EntitlementService
	resolver     *authz.Resolver
	logger       logger.Interface
}

func NewService(
	roleRepo authz.RoleRepository,
	memberRepo authz.MemberRepository,
	entitlements *appbilling.EntitlementService,
	logger logger.Interface,
) *Service {
	return &Service{
		roleRepo:     roleRepo,
		memberRepo:   memberRepo,
		entitlements: entitlements,
		resolver:     authz.NewResolver(),
		logger:       logger,
	}
}

// TenantSnapshot loads the tenant's roles and entitlements into an immutable
// context the resolver can be called against any number of times.
func (s *Service) TenantSnapshot(ctx context.Context, tenantID uint) (*authz.TenantContext, error) {
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

func (s *Service) member(ctx context.Context, tenantID, memberID uint) (*authz.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, tenantID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: id %d", authz.ErrMemberNotFound, memberID)
	}
	return member, nil
}

// CanPerform answers "may this member do this action on this resource",
// optionally scoped to one financial account (accountID != 0). Unknown
// resource or action strings deny rather than error.
func (s *Service) CanPerform(ctx context.Context, tenantID, memberID uint, resource, action string, accountID uint) (bool, error) {
	tc, err := s.TenantSnapshot(ctx, tenantID)
	if err != nil {
		return false, err
	}
	member, err := s.member(ctx, tenantID, memberID)
	if err != nil {
		return false, err
	}

	res := authz.Resource(resource)
	act := authz.Action(action)
	if accountID != 0 {
		return s.resolver.CanPerformOnAccount(tc, member, res, act, accountID), nil
	}
	return s.resolver.CanPerform(tc, member, res, act), nil
}

// CanAccessFeature reports whether the tenant's plan unlocks a premium
// feature. Unknown flag ids report false.
func (s *Service) CanAccessFeature(ctx context.Context, tenantID uint, flag string) (bool, error) {
	tc, err := s.TenantSnapshot(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return s.resolver.CanAccessFeature(tc, billing.FeatureFlag(flag)), nil
}

// CanCreate reports whether one more quota-bound resource of the given type
// fits under the tenant's plan. Unknown quota types report false.
func (s *Service) CanCreate(ctx context.Context, tenantID uint, quotaType string) (bool, error) {
	tc, err := s.TenantSnapshot(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return s.resolver.CanCreate(tc, billing.QuotaType(quotaType)), nil
}

// AccountPermissions is one account's effective action set in a summary.
type AccountPermissions struct {
	AccountID  uint
	Overridden bool
	Actions    []authz.Action
}

// MemberSummary is the member's full effective permission profile: the
// role-union grants per resource plus the per-account effective sets. The
// dashboard renders the provisioning preview from it.
type MemberSummary struct {
	MemberID    uint
	Email       string
	Status      authz.MemberStatus
	RoleIDs     []uint
	Permissions map[authz.Resource][]authz.Action
	Accounts    []AccountPermissions
}

func (s *Service) MemberPermissionSummary(ctx context.Context, tenantID, memberID uint) (*MemberSummary, error) {
	tc, err := s.TenantSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	member, err := s.member(ctx, tenantID, memberID)
	if err != nil {
		return nil, err
	}

	effective := s.resolver.EffectivePermissions(tc, member)
	permissions := make(map[authz.Resource][]authz.Action, len(effective))
	for _, resource := range authz.AllResources() {
		if actions, ok := effective[resource]; ok && !actions.IsEmpty() {
			permissions[resource] = actions.Actions()
		}
	}

	accounts := make([]AccountPermissions, 0, len(member.OverriddenAccountIDs()))
	for _, accountID := range member.OverriddenAccountIDs() {
		accounts = append(accounts, AccountPermissions{
			AccountID:  accountID,
			Overridden: true,
			Actions:    s.resolver.EffectiveAccountPermissions(tc, member, accountID).Actions(),
		})
	}

	return &MemberSummary{
		MemberID:    member.ID(),
		Email:       member.Email(),
		Status:      member.Status(),
		RoleIDs:     member.RoleIDs(),
		Permissions: permissions,
		Accounts:    accounts,
	}, nil
}

// ListMembers returns the tenant's members for the dashboard member screens.
func (s *Service) ListMembers(ctx context.Context, tenantID uint) ([]*authz.Member, error) {
	members, err := s.memberRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Errorw("failed to list members", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
