package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/buildcache/cache"
	"github.com/jonwraymond/buildcache/key"
)

type cell struct {
	kind string
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	c, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	return New(c)
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	var calls atomic.Int64
	err := r.Register("straight", func(_ context.Context, _ key.Args) (any, error) {
		calls.Add(1)
		return &cell{kind: "straight"}, nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	a1, err := r.Build(ctx, "straight", key.Args{"length": 10})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a2, err := r.Build(ctx, "straight", key.Args{"length": 10})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if a1.(*cell) != a2.(*cell) {
		t.Error("repeated builds should share the cached instance")
	}
	if calls.Load() != 1 {
		t.Errorf("factory invocations = %d, want 1", calls.Load())
	}
}

func TestRegistry_UnknownFactory(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Build(context.Background(), "spiral", nil)
	if !errors.Is(err, ErrUnknownFactory) {
		t.Errorf("Build() error = %v, want ErrUnknownFactory", err)
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := newTestRegistry(t)

	factory := func(_ context.Context, _ key.Args) (any, error) { return &cell{}, nil }

	if err := r.Register("bend", factory); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register("bend", factory)
	if !errors.Is(err, ErrDuplicateFactory) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateFactory", err)
	}
}

func TestRegistry_InvalidRegistration(t *testing.T) {
	r := newTestRegistry(t)

	factory := func(_ context.Context, _ key.Args) (any, error) { return &cell{}, nil }

	tests := []struct {
		name    string
		id      string
		factory cache.Factory
		wantErr error
	}{
		{"empty name", "", factory, key.ErrInvalidFactoryID},
		{"whitespace name", "  ", factory, key.ErrInvalidFactoryID},
		{"nil factory", "taper", nil, cache.ErrNilFactory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.id, tt.factory)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry(t)
	factory := func(_ context.Context, _ key.Args) (any, error) { return &cell{}, nil }

	for _, name := range []string{"straight", "bend", "taper"} {
		if err := r.Register(name, factory); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"bend", "straight", "taper"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistry_ResolveDoesNotBuild(t *testing.T) {
	r := newTestRegistry(t)
	var calls atomic.Int64

	_ = r.Register("straight", func(_ context.Context, _ key.Args) (any, error) {
		calls.Add(1)
		return &cell{}, nil
	})

	if _, ok := r.Resolve("straight"); !ok {
		t.Fatal("Resolve() should find the registered factory")
	}
	if _, ok := r.Resolve("missing"); ok {
		t.Error("Resolve() should miss unregistered names")
	}
	if calls.Load() != 0 {
		t.Errorf("Resolve() must not invoke the factory, calls = %d", calls.Load())
	}
}

func TestRegistry_CacheInvalidationRebuilds(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	var calls atomic.Int64

	_ = r.Register("straight", func(_ context.Context, _ key.Args) (any, error) {
		calls.Add(1)
		return &cell{kind: "straight"}, nil
	})

	_, _ = r.Build(ctx, "straight", key.Args{"length": 10})
	r.Cache().Clear()
	_, _ = r.Build(ctx, "straight", key.Args{"length": 10})

	if calls.Load() != 2 {
		t.Errorf("factory invocations after clear = %d, want 2", calls.Load())
	}
}

func TestMemoize(t *testing.T) {
	c, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	ctx := context.Background()

	var calls atomic.Int64
	straight := Memoize(c, "straight", func(_ context.Context, _ key.Args) (any, error) {
		calls.Add(1)
		return &cell{kind: "straight"}, nil
	})

	a1, err := straight(ctx, key.Args{"length": 10, "width": 1})
	if err != nil {
		t.Fatalf("memoized factory error = %v", err)
	}
	a2, err := straight(ctx, key.Args{"width": 1, "length": 10})
	if err != nil {
		t.Fatalf("memoized factory error = %v", err)
	}
	a3, err := straight(ctx, key.Args{"length": 12, "width": 1})
	if err != nil {
		t.Fatalf("memoized factory error = %v", err)
	}

	if a1.(*cell) != a2.(*cell) {
		t.Error("equal bindings should share an instance")
	}
	if a1.(*cell) == a3.(*cell) {
		t.Error("distinct bindings should not share an instance")
	}
	if calls.Load() != 2 {
		t.Errorf("factory invocations = %d, want 2", calls.Load())
	}
}
