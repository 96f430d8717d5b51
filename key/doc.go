// Package key derives deterministic cache keys for factory invocations.
//
// It canonicalizes argument bindings into a stable byte form (sorted keys,
// fixed numeric formatting), hashes them, and produces human-traceable
// artifact names with a collision-resistant hash tail.
package key
