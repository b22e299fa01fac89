package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauthz "fiscus/internal/application/authz"
	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	"fiscus/internal/shared/logger"
)

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

type fakeRoleRepo struct {
	roles []*authz.Role
}

func (f *fakeRoleRepo) Create(ctx context.Context, tenantID uint, role *authz.Role) error {
	f.roles = append(f.roles, role)
	return nil
}

func (f *fakeRoleRepo) GetByID(ctx context.Context, tenantID, id uint) (*authz.Role, error) {
	for _, r := range f.roles {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleRepo) ListByTenant(ctx context.Context, tenantID uint) ([]*authz.Role, error) {
	return f.roles, nil
}

func (f *fakeRoleRepo) Update(ctx context.Context, tenantID uint, role *authz.Role) error {
	return nil
}

func (f *fakeRoleRepo) Delete(ctx context.Context, tenantID, id uint) error { return nil }

func (f *fakeRoleRepo) UnassignFromAllMembers(ctx context.Context, tenantID, roleID uint) error {
	return nil
}

func (f *fakeRoleRepo) CountAssignedMembers(ctx context.Context, tenantID, roleID uint) (int64, error) {
	return 0, nil
}

type fakeMemberRepo struct {
	members map[uint]*authz.Member
}

func (f *fakeMemberRepo) Create(ctx context.Context, tenantID uint, member *authz.Member) error {
	return nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, tenantID, id uint) (*authz.Member, error) {
	return f.members[id], nil
}

func (f *fakeMemberRepo) GetByEmail(ctx context.Context, tenantID uint, email string) (*authz.Member, error) {
	return nil, nil
}

func (f *fakeMemberRepo) ListByTenant(ctx context.Context, tenantID uint) ([]*authz.Member, error) {
	return nil, nil
}

func (f *fakeMemberRepo) Update(ctx context.Context, tenantID uint, member *authz.Member) error {
	return nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, tenantID, id uint) error { return nil }

type stubSubscriptionRepo struct {
	sub *billing.Subscription
}

func (s *stubSubscriptionRepo) GetByTenant(ctx context.Context, tenantID uint) (*billing.Subscription, error) {
	return s.sub, nil
}

type stubUsageRepo struct{}

func (s *stubUsageRepo) GetByTenant(ctx context.Context, tenantID uint) (*billing.FeatureUsage, error) {
	return nil, nil
}

func (s *stubUsageRepo) Save(ctx context.Context, usage *billing.FeatureUsage) error { return nil }

func gatePlanCatalog(t *testing.T) *billing.PlanCatalog {
	t.Helper()
	free, err := billing.NewPlan("free", "Free", billing.QuotaTable{
		billing.QuotaMembers:     3,
		billing.QuotaCustomRoles: 0,
	}, nil)
	require.NoError(t, err)
	business, err := billing.NewPlan("business", "Business", billing.QuotaTable{
		billing.QuotaMembers:     50,
		billing.QuotaCustomRoles: 25,
	}, billing.FeatureFlagTable{
		billing.FeaturePermissionOverrides: true,
	})
	require.NoError(t, err)
	catalog, err := billing.NewPlanCatalog([]*billing.Plan{free, business})
	require.NoError(t, err)
	return catalog
}

// gateEngine wires the gates behind the real identity middleware. Member 10
// holds the members grants, member 11 is view-only elsewhere. The tenant is
// on the free plan unless planID says otherwise.
func gateEngine(t *testing.T, planID string) *gin.Engine {
	t.Helper()

	now := time.Now()
	viewer, err := authz.ReconstructRole(1, "Viewer", "dashboard only", false, authz.PermissionMap{
		authz.ResourceDashboard: authz.NewActionSet(authz.ActionView),
	}, now, now)
	require.NoError(t, err)
	manager, err := authz.ReconstructRole(2, "Manager", "member administration", false, authz.PermissionMap{
		authz.ResourceMembers: authz.NewActionSet(authz.ActionView, authz.ActionCreate),
	}, now, now)
	require.NoError(t, err)

	granted, err := authz.NewMember("manager@example.com", []uint{2})
	require.NoError(t, err)
	granted.SetID(10)
	denied, err := authz.NewMember("viewer@example.com", []uint{1})
	require.NoError(t, err)
	denied.SetID(11)

	var sub *billing.Subscription
	if planID != billing.PlanFree {
		sub, err = billing.ReconstructSubscription(1, planID, billing.SubscriptionStatusActive,
			now.Add(-24*time.Hour), nil, nil)
		require.NoError(t, err)
	}

	entitlements := appbilling.NewEntitlementService(
		&stubSubscriptionRepo{sub: sub},
		&stubUsageRepo{},
		gatePlanCatalog(t),
		nil,
		newNopLogger(),
	)
	authzService := appauthz.NewService(
		&fakeRoleRepo{roles: []*authz.Role{viewer, manager}},
		&fakeMemberRepo{members: map[uint]*authz.Member{10: granted, 11: denied}},
		entitlements,
		newNopLogger(),
	)
	mw := NewPermissionMiddleware(authzService, newNopLogger())

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	engine := gin.New()
	engine.Use(TenantContext())
	engine.GET("/members", mw.RequirePermission("members", "view"), ok)
	engine.GET("/overrides", mw.RequireFeature("permission_overrides"), ok)
	engine.POST("/roles", mw.RequireQuota("custom_roles"), ok)
	return engine
}

func TestRequirePermissionGate(t *testing.T) {
	engine := gateEngine(t, billing.PlanFree)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing tenant identity", map[string]string{"X-Member-ID": "10"}, http.StatusUnauthorized},
		{"missing member identity", map[string]string{"X-Tenant-ID": "1"}, http.StatusUnauthorized},
		{"grant present", map[string]string{"X-Tenant-ID": "1", "X-Member-ID": "10"}, http.StatusOK},
		{"grant absent", map[string]string{"X-Tenant-ID": "1", "X-Member-ID": "11"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, engine, http.MethodGet, "/members", tt.headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireFeatureGate(t *testing.T) {
	t.Run("free plan lacks the flag", func(t *testing.T) {
		engine := gateEngine(t, billing.PlanFree)
		w := performRequest(t, engine, http.MethodGet, "/overrides", map[string]string{"X-Tenant-ID": "1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("business plan enables the flag", func(t *testing.T) {
		engine := gateEngine(t, "business")
		w := performRequest(t, engine, http.MethodGet, "/overrides", map[string]string{"X-Tenant-ID": "1"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing tenant identity", func(t *testing.T) {
		engine := gateEngine(t, "business")
		w := performRequest(t, engine, http.MethodGet, "/overrides", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireQuotaGate(t *testing.T) {
	t.Run("free plan has no custom role headroom", func(t *testing.T) {
		engine := gateEngine(t, billing.PlanFree)
		w := performRequest(t, engine, http.MethodPost, "/roles", map[string]string{"X-Tenant-ID": "1"})
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
	})

	t.Run("business plan has headroom", func(t *testing.T) {
		engine := gateEngine(t, "business")
		w := performRequest(t, engine, http.MethodPost, "/roles", map[string]string{"X-Tenant-ID": "1"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
