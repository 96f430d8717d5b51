package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/buildcache/cache"
	"github.com/jonwraymond/buildcache/key"
)

// Sentinel errors for factory registration and resolution.
var (
	ErrUnknownFactory   = errors.New("registry: factory is not registered")
	ErrDuplicateFactory = errors.New("registry: factory already registered")
)

// Registry manages named factories and an owned build cache.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Determinism: Build routes through the cache, so equal (name, args)
//   requests return the same artifact instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]cache.Factory
	cache     *cache.Cache
}

// New creates a registry whose builds are memoized in c.
func New(c *cache.Cache) *Registry {
	return &Registry{
		factories: make(map[string]cache.Factory),
		cache:     c,
	}
}

// Register adds a named factory. Names must be valid factory identifiers
// and unique within the registry.
func (r *Registry) Register(name string, factory cache.Factory) error {
	if err := key.ValidateFactoryID(name); err != nil {
		return err
	}
	if factory == nil {
		return cache.ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("registry: %q: %w", name, ErrDuplicateFactory)
	}
	r.factories[name] = factory
	return nil
}

// Resolve returns the factory registered under name.
func (r *Registry) Resolve(name string) (cache.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// Names returns the sorted names of all registered factories.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves name and returns the memoized artifact for (name, args),
// invoking the factory only when the cache has no entry for the binding.
func (r *Registry) Build(ctx context.Context, name string, args key.Args) (any, error) {
	factory, ok := r.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("registry: %q: %w", name, ErrUnknownFactory)
	}
	return r.cache.GetOrBuild(ctx, name, args, factory)
}

// Cache exposes the registry's build cache for invalidation and inspection.
func (r *Registry) Cache() *cache.Cache {
	return r.cache
}
