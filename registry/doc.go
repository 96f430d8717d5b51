// Package registry maps factory names to build functions and routes named
// builds through a shared deterministic cache.
//
// It is the explicit-wrapper equivalent of a memoizing decorator: register
// factories once at startup, then request artifacts by name and argument
// binding. Memoize wraps a single factory without registration.
package registry
