package cache

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/buildcache/key"
)

// Factory builds an artifact from an argument binding. A factory must be
// deterministic: equal bindings must describe equal artifacts.
type Factory func(ctx context.Context, args key.Args) (any, error)

// entry is one PRESENT cache slot, keyed by the full binding hash.
type entry struct {
	artifact any
	key      key.Key
}

// Cache is a process-wide build cache keyed by deterministic binding keys.
// Create one explicitly with New and inject it into call sites; it owns the
// artifacts stored in it, and stored artifacts must be treated as immutable.
//
// Contract:
// - Concurrency: safe for concurrent use; at most one in-flight build per key.
// - Context: GetOrBuild passes ctx to the factory; the cache itself does not
//   cancel builds in progress.
// - Errors: factory errors propagate unchanged and leave the key absent.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry // Key.Hash -> entry
	names   map[string]string // Key.Name -> Key.Hash, latest binding wins

	group   singleflight.Group
	keyer   key.Keyer
	metrics *buildMetrics
}

// Option configures a Cache.
type Option func(*config)

type config struct {
	keyer key.Keyer
	meter metricMeter
}

// WithKeyer sets a custom key derivation scheme.
func WithKeyer(k key.Keyer) Option {
	return func(c *config) {
		if k != nil {
			c.keyer = k
		}
	}
}

// New creates an empty build cache.
func New(opts ...Option) (*Cache, error) {
	cfg := &config{keyer: key.NewDefaultKeyer()}
	for _, opt := range opts {
		opt(cfg)
	}

	metrics, err := newBuildMetrics(cfg.meter)
	if err != nil {
		return nil, fmt.Errorf("cache: create metrics: %w", err)
	}

	return &Cache{
		entries: make(map[string]*entry),
		names:   make(map[string]string),
		keyer:   cfg.keyer,
		metrics: metrics,
	}, nil
}

// GetOrBuild returns the artifact for (factoryID, args), building it with
// build on first use.
//
// On a hit the stored artifact is returned unchanged and the factory is not
// invoked. On a miss the factory runs exactly once, even under concurrent
// callers for the same binding; all callers receive the same artifact
// instance. A factory error is propagated to every waiting caller and the
// key stays absent, so the next call retries the build.
func (c *Cache) GetOrBuild(ctx context.Context, factoryID string, args key.Args, build Factory) (any, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if build == nil {
		return nil, ErrNilFactory
	}

	k, err := c.keyer.Key(factoryID, args)
	if err != nil {
		return nil, err
	}

	// Fast path: PRESENT entries never block on unrelated builds.
	if artifact, ok, err := c.lookup(k); err != nil {
		return nil, err
	} else if ok {
		c.metrics.recordHit(ctx, factoryID)
		return artifact, nil
	}

	artifact, err, _ := c.group.Do(k.Hash, func() (any, error) {
		// A previous flight may have stored the entry between our miss and
		// this flight starting.
		if artifact, ok, err := c.lookup(k); err != nil {
			return nil, err
		} else if ok {
			c.metrics.recordHit(ctx, factoryID)
			return artifact, nil
		}

		// Build metrics count factory invocations only; hits, coalesced
		// waiters, and collision errors never increment them.
		start := time.Now()
		built, err := build(ctx, args)
		c.metrics.recordBuild(ctx, factoryID, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		seal(built)
		c.store(k, built)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// store inserts one entry and indexes its readable name.
func (c *Cache) store(k key.Key, artifact any) {
	c.mu.Lock()
	c.entries[k.Hash] = &entry{artifact: artifact, key: k}
	c.names[k.Name] = k.Hash
	c.mu.Unlock()
}

// lookup reads one entry by binding hash and verifies the stored binding
// structurally matches the requested one.
func (c *Cache) lookup(k key.Key) (any, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[k.Hash]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !bytes.Equal(e.key.Canonical, k.Canonical) {
		return nil, false, fmt.Errorf("cache: hash %q derived from distinct bindings %s and %s: %w",
			k.Hash, e.key.Canonical, k.Canonical, ErrKeyCollision)
	}
	return e.artifact, true, nil
}

// Lookup returns the artifact stored under the readable name, if any. It
// never builds. When distinct bindings share a readable name the most
// recently stored one is returned.
func (c *Cache) Lookup(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	hash, ok := c.names[name]
	if !ok {
		return nil, false
	}
	e, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	return e.artifact, true
}

// Put registers a pre-built artifact under k. Storing under a key that is
// already present is a usage error (ErrCacheConsistency): stored artifacts
// are immutable and must not be re-registered after retrieval.
func (c *Cache) Put(k key.Key, artifact any) error {
	if c == nil {
		return ErrNilCache
	}
	if k.Name == "" || k.Hash == "" {
		return fmt.Errorf("cache: key must be derived by a Keyer: %w", ErrInvalidKey)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[k.Hash]; exists {
		return fmt.Errorf("cache: re-register %q: %w", k.Name, ErrCacheConsistency)
	}
	seal(artifact)
	c.entries[k.Hash] = &entry{artifact: artifact, key: k}
	c.names[k.Name] = k.Hash
	return nil
}

// Invalidate removes the entry stored under the readable name. It reports
// whether an entry was present; a subsequent GetOrBuild for the binding
// rebuilds.
func (c *Cache) Invalidate(name string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	hash, ok := c.names[name]
	if !ok {
		return false
	}
	delete(c.entries, hash)
	delete(c.names, name)
	return true
}

// InvalidateArtifact removes the entry holding exactly this artifact
// instance, matched by identity rather than by key.
func (c *Cache) InvalidateArtifact(artifact any) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for hash, e := range c.entries {
		if sameArtifact(e.artifact, artifact) {
			delete(c.entries, hash)
			if c.names[e.key.Name] == hash {
				delete(c.names, e.key.Name)
			}
			return true
		}
	}
	return false
}

// Clear empties the cache. Outstanding references to previously retrieved
// artifacts remain valid; only future lookups are affected.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.names = make(map[string]string)
	c.mu.Unlock()
}

// Len returns the number of PRESENT entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns the sorted readable names of all PRESENT entries. Distinct
// bindings that share a readable name appear once.
func (c *Cache) Names() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sameArtifact reports whether a and b are the same artifact instance.
// Reference kinds compare by pointer; comparable values by equality.
func sameArtifact(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	default:
		if !ra.Type().Comparable() {
			return false
		}
		return a == b
	}
}
