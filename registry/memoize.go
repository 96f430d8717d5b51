package registry

import (
	"context"

	"github.com/jonwraymond/buildcache/cache"
	"github.com/jonwraymond/buildcache/key"
)

// Memoize wraps a factory so every call routes through c. The returned
// factory has get-or-build semantics: equal bindings return the cached
// artifact instance, distinct bindings build once each.
//
// This is the wrapper form of a caching decorator; use it where a factory
// is called directly rather than resolved by name.
func Memoize(c *cache.Cache, factoryID string, fn cache.Factory) cache.Factory {
	return func(ctx context.Context, args key.Args) (any, error) {
		return c.GetOrBuild(ctx, factoryID, args, fn)
	}
}
