// Package observe provides observability primitives for artifact builds.
//
// It is a pure instrumentation library: no building, no caching, no I/O
// beyond exporter setup. Consumers wire the observer into their build
// pipeline directly or through Middleware.
package observe
