package providers

import (
	"context"
	"sync"

	"github.com/tobikareem/desola-flights/internal/models"
)

// Provider is one external flight-offer source. Search maps the provider's
// native payload into the unified model; every offer it returns carries the
// provider's name.
type Provider interface {
	Name() string
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error)
}

// RawSink receives the raw provider payload for best-effort persistence.
// Implementations must not block the search path.
type RawSink interface {
	StoreRaw(key string, payload []byte)
}

// LogoSink collects airline logo URLs exposed by a provider's payload so
// offers from logo-less providers can be repaired later.
type LogoSink interface {
	Set(code, url string)
}

// Registry maps provider names to their adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.adapters[name]
	return p, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
