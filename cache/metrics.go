package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// metricMeter aliases the otel meter so cache options read cleanly.
type metricMeter = metric.Meter

// WithMeter enables build metrics on the given OpenTelemetry meter.
// Without it the cache records no telemetry.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

// buildMetrics records cache outcomes.
type buildMetrics struct {
	hits         metric.Int64Counter
	builds       metric.Int64Counter
	failures     metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newBuildMetrics(meter metric.Meter) (*buildMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("buildcache")
	}

	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Artifacts served from the cache without rebuilding"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	builds, err := meter.Int64Counter(
		"cache.builds",
		metric.WithDescription("Factory invocations performed on cache misses"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"cache.build.failures",
		metric.WithDescription("Factory invocations that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.build.duration_ms",
		metric.WithDescription("Factory build duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &buildMetrics{
		hits:         hits,
		builds:       builds,
		failures:     failures,
		durationHist: durationHist,
	}, nil
}

func (m *buildMetrics) recordHit(ctx context.Context, factoryID string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("factory.id", factoryID)))
}

func (m *buildMetrics) recordBuild(ctx context.Context, factoryID string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("factory.id", factoryID))

	m.builds.Add(ctx, 1, opt)
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}
