package contest

import (
	"fmt"
	"sync"

	"github.com/contestkit/arena/internal/catalog"
	"github.com/contestkit/arena/internal/domain"
)

// Registry holds the contest definitions and the most recent catalog
// snapshot per contest. Snapshots are replaced whole on refresh, never
// mutated, so readers can hold one across a request without locking.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]Definition
	order    []string
	catalogs map[string]catalog.Catalog
}

// NewRegistry builds a registry from a loaded manifest.
func NewRegistry(m *Manifest) *Registry {
	r := &Registry{
		defs:     make(map[string]Definition, len(m.Contests)),
		catalogs: make(map[string]catalog.Catalog),
	}
	for _, def := range m.Contests {
		r.defs[def.ID] = def
		r.order = append(r.order, def.ID)
	}
	return r
}

// Get returns a contest definition by id.
func (r *Registry) Get(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("contest %s: %w", id, domain.ErrContestNotFound)
	}
	return def, nil
}

// List returns all contest definitions in manifest order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.defs[id])
	}
	return defs
}

// Catalog returns the cached catalog snapshot for a contest, if one has
// been built.
func (r *Registry) Catalog(id string) (catalog.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cat, ok := r.catalogs[id]
	return cat, ok
}

// SetCatalog replaces the cached snapshot for a contest.
func (r *Registry) SetCatalog(id string, cat catalog.Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[id] = cat
}
