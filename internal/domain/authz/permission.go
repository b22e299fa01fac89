package authz

import (
	"fmt"
	"sort"
)

// Permission is a single (resource, action) grant.
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) Code() string {
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}

// ActionSet is a set of actions. Sets combine by union only; there is no
// priority ordering between grants.
type ActionSet map[Action]struct{}

func NewActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

func (s ActionSet) Has(action Action) bool {
	_, ok := s[action]
	return ok
}

func (s ActionSet) Add(action Action) {
	s[action] = struct{}{}
}

func (s ActionSet) Remove(action Action) {
	delete(s, action)
}

// Toggle flips membership of action and reports whether it is present after.
func (s ActionSet) Toggle(action Action) bool {
	if s.Has(action) {
		delete(s, action)
		return false
	}
	s[action] = struct{}{}
	return true
}

func (s ActionSet) Union(other ActionSet) ActionSet {
	out := s.Clone()
	for a := range other {
		out[a] = struct{}{}
	}
	return out
}

func (s ActionSet) Subtract(other ActionSet) ActionSet {
	out := make(ActionSet, len(s))
	for a := range s {
		if !other.Has(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

func (s ActionSet) Clone() ActionSet {
	out := make(ActionSet, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}

func (s ActionSet) IsEmpty() bool {
	return len(s) == 0
}

// Actions returns the set's members in stable (lexicographic) order.
func (s ActionSet) Actions() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissionMap maps each resource to the set of actions granted on it.
type PermissionMap map[Resource]ActionSet

func (m PermissionMap) Grants(resource Resource, action Action) bool {
	return m[resource].Has(action)
}

func (m PermissionMap) Clone() PermissionMap {
	out := make(PermissionMap, len(m))
	for r, s := range m {
		out[r] = s.Clone()
	}
	return out
}

// Validate checks every grant against the catalog. The first pair outside the
// catalog is reported wrapped in ErrInvalidPermission.
func (m PermissionMap) Validate() error {
	for resource, actions := range m {
		for action := range actions {
			if !CatalogAllows(resource, action) {
				return fmt.Errorf("%w: %s:%s", ErrInvalidPermission, resource, action)
			}
		}
	}
	return nil
}

// ParsePermissionMap converts wire-level permission input into a validated
// PermissionMap. Any (resource, action) pair outside the catalog is rejected
// wrapped in ErrInvalidPermission.
func ParsePermissionMap(raw map[string][]string) (PermissionMap, error) {
	out := make(PermissionMap, len(raw))
	for resource, actions := range raw {
		r := Resource(resource)
		if _, ok := catalog[r]; !ok {
			return nil, fmt.Errorf("%w: unknown resource %s", ErrInvalidPermission, resource)
		}
		set := NewActionSet()
		for _, action := range actions {
			a := Action(action)
			if !CatalogAllows(r, a) {
				return nil, fmt.Errorf("%w: %s:%s", ErrInvalidPermission, resource, action)
			}
			set.Add(a)
		}
		out[r] = set
	}
	return out, nil
}

// UnionPermissionMaps combines role permission maps by set union. This is the
// single combinator for multi-role grants; it never consults ordering.
func UnionPermissionMaps(maps ...PermissionMap) PermissionMap {
	out := make(PermissionMap)
	for _, m := range maps {
		for resource, actions := range m {
			if existing, ok := out[resource]; ok {
				out[resource] = existing.Union(actions)
			} else {
				out[resource] = actions.Clone()
			}
		}
	}
	return out
}
