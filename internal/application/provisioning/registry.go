package provisioning

import (
	"sync"
	"time"
)

// Registry tracks live workflow instances for the HTTP layer. Workflows are
// not persisted between sessions; abandoned ones are pruned by age.
type Registry struct {
	mu    sync.Mutex
	items map[string]*registryEntry
}

type registryEntry struct {
	workflow *Workflow
	created  time.Time
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*registryEntry)}
}

func (r *Registry) Add(w *Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[w.ID()] = &registryEntry{workflow: w, created: time.Now()}
}

func (r *Registry) Get(workflowID string) (*Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[workflowID]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return entry.workflow, nil
}

func (r *Registry) Remove(workflowID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, workflowID)
}

// Prune drops workflows older than maxAge and returns how many were removed.
func (r *Registry) Prune(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, entry := range r.items {
		if entry.created.Before(cutoff) {
			delete(r.items, id)
			removed++
		}
	}
	return removed
}
