// Package tenantlock serializes writes per tenant. Holding the tenant lock
// across a quota check and the creation that follows makes the pair
// effectively atomic, so two concurrent invites cannot jointly overshoot a
// plan limit.
package tenantlock

import "sync"

type Registry struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[uint]*sync.Mutex)}
}

func (r *Registry) lockFor(tenantID uint) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[tenantID] = l
	}
	return l
}

// Lock acquires the tenant's exclusive write lock and returns the unlock
// function. Locks are never removed; the registry grows with the number of
// tenants served by this process, which is bounded and small per node.
func (r *Registry) Lock(tenantID uint) func() {
	l := r.lockFor(tenantID)
	l.Lock()
	return l.Unlock
}
