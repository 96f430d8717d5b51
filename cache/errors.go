package cache

import "errors"

// Sentinel errors for build cache operations.
var (
	// ErrNilCache indicates an operation on a nil cache.
	ErrNilCache = errors.New("cache: cache is nil")

	// ErrNilFactory indicates GetOrBuild was called without a factory.
	ErrNilFactory = errors.New("cache: factory is nil")

	// ErrKeyCollision indicates two structurally distinct bindings derived
	// the same binding hash. This is a defect in the canonicalization
	// scheme, not a recoverable runtime condition.
	ErrKeyCollision = errors.New("cache: key collision between distinct bindings")

	// ErrInvalidKey indicates a Put with a zero or hand-assembled key.
	ErrInvalidKey = errors.New("cache: key is incomplete")

	// ErrCacheConsistency indicates an attempt to store an artifact under a
	// key that is already present. Stored artifacts are immutable; build a
	// new binding instead of re-registering a mutated artifact.
	ErrCacheConsistency = errors.New("cache: key already holds an artifact")
)
