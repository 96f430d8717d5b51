package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/buildcache/key"
)

func counterTotal(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is %T, want Sum[int64]", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

// TestCache_MetricsCountFactoryRuns verifies the build counters track factory
// invocations, not GetOrBuild calls: hits and collision errors do not count
// as builds.
func TestCache_MetricsCountFactoryRuns(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	c, err := New(WithMeter(provider.Meter("buildcache_test")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	var calls atomic.Int64

	// One build, then two hits on the same binding
	args := key.Args{"length": 10}
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrBuild(ctx, "straight", args, countingFactory(&calls)); err != nil {
			t.Fatalf("GetOrBuild() error = %v", err)
		}
	}

	// One failed build
	buildErr := errors.New("layer mismatch")
	_, err = c.GetOrBuild(ctx, "bend", key.Args{"angle": 90}, func(_ context.Context, _ key.Args) (any, error) {
		return nil, buildErr
	})
	if !errors.Is(err, buildErr) {
		t.Fatalf("GetOrBuild() error = %v, want %v", err, buildErr)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got := counterTotal(t, &rm, "cache.builds"); got != 2 {
		t.Errorf("cache.builds = %d, want 2 (one success, one failure)", got)
	}
	if got := counterTotal(t, &rm, "cache.build.failures"); got != 1 {
		t.Errorf("cache.build.failures = %d, want 1", got)
	}
	if got := counterTotal(t, &rm, "cache.hits"); got != 2 {
		t.Errorf("cache.hits = %d, want 2", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("factory invocations = %d, want 1", calls.Load())
	}
}

// TestCache_MetricsSkipCollisionErrors verifies a collision surfaced on
// lookup records neither a build nor a failure.
func TestCache_MetricsSkipCollisionErrors(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	c, err := New(
		WithKeyer(&collidingKeyer{inner: key.NewDefaultKeyer()}),
		WithMeter(provider.Meter("buildcache_test")),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	var calls atomic.Int64

	if _, err := c.GetOrBuild(ctx, "straight", key.Args{"length": 10}, countingFactory(&calls)); err != nil {
		t.Fatalf("GetOrBuild() error = %v", err)
	}
	_, err = c.GetOrBuild(ctx, "straight", key.Args{"length": 12}, countingFactory(&calls))
	if !errors.Is(err, ErrKeyCollision) {
		t.Fatalf("GetOrBuild() error = %v, want ErrKeyCollision", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got := counterTotal(t, &rm, "cache.builds"); got != 1 {
		t.Errorf("cache.builds = %d, want 1 (the collision did not run a factory)", got)
	}
	if got := counterTotal(t, &rm, "cache.build.failures"); got != 0 {
		t.Errorf("cache.build.failures = %d, want 0", got)
	}
}
