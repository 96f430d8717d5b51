// Package cache provides a deterministic, process-wide build cache for
// factory-produced artifacts.
//
// It guarantees exactly-once construction per distinct (factory, arguments)
// pair: repeated or concurrent requests for the same binding return the same
// artifact instance, never a rebuilt copy, until the entry is invalidated.
// Keys are derived by package key; build coalescing uses singleflight.
package cache
