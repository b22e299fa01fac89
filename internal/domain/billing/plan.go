// Package billing provides the entitlement domain model: subscription plans,
// quota tables, feature flags, and per-tenant usage counters.
package billing

import "fmt"

// QuotaType identifies a countable resource type limited by plan.
type QuotaType string

const (
	QuotaMembers       QuotaType = "members"
	QuotaAccounts      QuotaType = "accounts"
	QuotaOrganizations QuotaType = "organizations"
	QuotaCustomRoles   QuotaType = "custom_roles"
)

func (qt QuotaType) IsValid() bool {
	switch qt {
	case QuotaMembers, QuotaAccounts, QuotaOrganizations, QuotaCustomRoles:
		return true
	default:
		return false
	}
}

func (qt QuotaType) String() string {
	return string(qt)
}

// Unlimited is the sentinel limit meaning no cap for a quota type.
const Unlimited = -1

// QuotaTable maps quota types to integer limits; Unlimited (-1) lifts the cap.
type QuotaTable map[QuotaType]int

func (t QuotaTable) Limit(qt QuotaType) (int, bool) {
	limit, ok := t[qt]
	return limit, ok
}

func (t QuotaTable) Clone() QuotaTable {
	out := make(QuotaTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// FeatureFlag identifies a premium capability gated by plan.
type FeatureFlag string

const (
	FeatureAIAdvisor           FeatureFlag = "ai_advisor"
	FeatureExchangeRates       FeatureFlag = "exchange_rates"
	FeaturePermissionOverrides FeatureFlag = "permission_overrides"
	FeatureDataExport          FeatureFlag = "data_export"
)

// FeatureFlagTable maps feature flags to their enabled state. Lookups of
// flags absent from the table report false: a new or malformed flag id never
// grants access.
type FeatureFlagTable map[FeatureFlag]bool

func (t FeatureFlagTable) Enabled(flag FeatureFlag) bool {
	return t[flag]
}

func (t FeatureFlagTable) Clone() FeatureFlagTable {
	out := make(FeatureFlagTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// PlanFree is the plan every tenant degrades to without an active subscription.
const PlanFree = "free"

// Plan is one tier of the subscription catalog.
type Plan struct {
	id       string
	name     string
	limits   QuotaTable
	features FeatureFlagTable
}

func NewPlan(id, name string, limits QuotaTable, features FeatureFlagTable) (*Plan, error) {
	if id == "" {
		return nil, fmt.Errorf("plan id is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if limits == nil {
		limits = make(QuotaTable)
	}
	if features == nil {
		features = make(FeatureFlagTable)
	}
	for qt := range limits {
		if !qt.IsValid() {
			return nil, fmt.Errorf("unknown quota type in plan %s: %s", id, qt)
		}
	}
	return &Plan{
		id:       id,
		name:     name,
		limits:   limits.Clone(),
		features: features.Clone(),
	}, nil
}

func (p *Plan) ID() string {
	return p.id
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) Limits() QuotaTable {
	return p.limits.Clone()
}

func (p *Plan) Features() FeatureFlagTable {
	return p.features.Clone()
}

func (p *Plan) HasFeature(flag FeatureFlag) bool {
	return p.features.Enabled(flag)
}

// PlanCatalog is the immutable set of plans known to the system, loaded once
// at startup.
type PlanCatalog struct {
	plans map[string]*Plan
	order []string
}

func NewPlanCatalog(plans []*Plan) (*PlanCatalog, error) {
	byID := make(map[string]*Plan, len(plans))
	order := make([]string, 0, len(plans))
	for _, p := range plans {
		if _, dup := byID[p.ID()]; dup {
			return nil, fmt.Errorf("duplicate plan id: %s", p.ID())
		}
		byID[p.ID()] = p
		order = append(order, p.ID())
	}
	if _, ok := byID[PlanFree]; !ok {
		return nil, fmt.Errorf("plan catalog must contain the %q plan", PlanFree)
	}
	return &PlanCatalog{plans: byID, order: order}, nil
}

// Plan returns the plan for id, or nil when unknown.
func (c *PlanCatalog) Plan(id string) *Plan {
	return c.plans[id]
}

// FreePlan returns the fallback plan; NewPlanCatalog guarantees it exists.
func (c *PlanCatalog) FreePlan() *Plan {
	return c.plans[PlanFree]
}

func (c *PlanCatalog) PlanIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
