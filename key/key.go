package key

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MaxFactoryIDLength is the maximum allowed length for a factory identifier.
const MaxFactoryIDLength = 256

// Args binds parameter names to argument values for a factory invocation.
// The binding is order-independent: any permutation of the same entries
// canonicalizes to the same Key.
type Args map[string]any

// Key identifies one (factory, arguments) pair.
type Key struct {
	// Name is the human-traceable rendering of the binding, derived from
	// the factory id and a readable argument suffix. Names longer than the
	// policy limit carry a hash tail instead of the full suffix. Readable
	// names are lossy and may coincide across distinct bindings; Hash is
	// the authoritative cache key.
	Name string

	// Hash is the hex SHA-256 of the canonical binding. It is the cache
	// key: distinct bindings have distinct hashes.
	Hash string

	// Canonical is the canonical serialization of the full binding
	// (factory id plus arguments). It is retained so a hash collision
	// between structurally distinct bindings can be detected instead of
	// silently returning the wrong artifact.
	Canonical []byte
}

// Keyer derives cache keys from factory invocations.
//
// Contract:
// - Determinism: equal (factoryID, args) must produce equal keys,
//   regardless of map iteration order, process run, or invocation count.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives the cache key for a factory invocation.
	Key(factoryID string, args Args) (Key, error)
}

// DefaultKeyer derives SHA-256 backed keys with readable names.
type DefaultKeyer struct {
	policy NamePolicy
}

// NewDefaultKeyer creates a keyer with the default naming policy.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{policy: DefaultNamePolicy()}
}

// NewKeyerWithPolicy creates a keyer with a custom naming policy.
func NewKeyerWithPolicy(policy NamePolicy) *DefaultKeyer {
	return &DefaultKeyer{policy: policy}
}

// Key derives the deterministic key for (factoryID, args).
// A nil Args is equivalent to an empty one.
func (k *DefaultKeyer) Key(factoryID string, args Args) (Key, error) {
	if err := ValidateFactoryID(factoryID); err != nil {
		return Key{}, err
	}
	if args == nil {
		args = Args{}
	}

	// Canonical binding covers the factory id too, so the same arguments
	// passed to different factories never share a hash.
	canonical, err := Canonicalize([]any{factoryID, map[string]any(args)})
	if err != nil {
		return Key{}, fmt.Errorf("key: canonicalize args for %q: %w", factoryID, err)
	}

	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])

	name, err := k.policy.name(factoryID, args, hash)
	if err != nil {
		return Key{}, err
	}

	return Key{Name: name, Hash: hash, Canonical: canonical}, nil
}

// ValidateFactoryID checks that a factory identifier is usable as a key
// component. Identifiers are printable ASCII so derived names slice cleanly
// at byte boundaries.
func ValidateFactoryID(id string) error {
	if id == "" {
		return ErrInvalidFactoryID
	}
	if len(id) > MaxFactoryIDLength {
		return fmt.Errorf("key: factory id exceeds %d characters: %w", MaxFactoryIDLength, ErrInvalidFactoryID)
	}
	for _, r := range id {
		if r < '!' || r > '~' {
			return fmt.Errorf("key: factory id contains %q: %w", r, ErrInvalidFactoryID)
		}
	}
	return nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
