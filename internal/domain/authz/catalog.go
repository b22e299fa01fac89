// Package authz provides the authorization domain model: the resource
// catalog, roles, member permission profiles, and the permission resolver.
package authz

import "fmt"

type Resource string

const (
	ResourceDashboard     Resource = "dashboard"
	ResourceTransactions  Resource = "transactions"
	ResourceAccounts      Resource = "accounts"
	ResourceMembers       Resource = "members"
	ResourceRoles         Resource = "roles"
	ResourceOrganizations Resource = "organizations"
	ResourceBilling       Resource = "billing"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func NewAction(action string) (Action, error) {
	switch a := Action(action); a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return a, nil
	default:
		return "", fmt.Errorf("invalid action: %s", action)
	}
}

func (a Action) String() string {
	return string(a)
}

func (r Resource) String() string {
	return string(r)
}

// resourceOrder fixes the iteration order of the catalog; the catalog itself
// is immutable and process-wide.
var resourceOrder = []Resource{
	ResourceDashboard,
	ResourceTransactions,
	ResourceAccounts,
	ResourceMembers,
	ResourceRoles,
	ResourceOrganizations,
	ResourceBilling,
}

var catalog = map[Resource][]Action{
	ResourceDashboard:     {ActionView},
	ResourceTransactions:  {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ResourceAccounts:      {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ResourceMembers:       {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ResourceRoles:         {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ResourceOrganizations: {ActionView, ActionCreate, ActionEdit, ActionDelete},
	ResourceBilling:       {ActionView, ActionEdit},
}

// ValidActions returns the actions declared for a resource. Asking about a
// resource outside the catalog is a programmer error and panics; gating
// checks go through CatalogAllows instead, which fails closed.
func ValidActions(resource Resource) ActionSet {
	actions, ok := catalog[resource]
	if !ok {
		panic(fmt.Sprintf("authz: unknown resource %q", resource))
	}
	return NewActionSet(actions...)
}

// CatalogAllows reports whether the (resource, action) pair is declared in
// the catalog. Unknown resources and actions return false; this is the
// fail-closed entry point used by the resolver.
func CatalogAllows(resource Resource, action Action) bool {
	actions, ok := catalog[resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// AllResources returns the catalog's resources in declaration order.
func AllResources() []Resource {
	out := make([]Resource, len(resourceOrder))
	copy(out, resourceOrder)
	return out
}

// IsAccountScoped reports whether a resource's permissions can be overridden
// per financial account. Only transaction-level data is account-scoped.
func IsAccountScoped(resource Resource) bool {
	return resource == ResourceTransactions
}
