package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			"missing service name",
			Config{},
			ErrMissingServiceName,
		},
		{
			"minimal valid",
			Config{ServiceName: "buildcache"},
			nil,
		},
		{
			"valid tracing",
			Config{ServiceName: "buildcache", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5}},
			nil,
		},
		{
			"unknown tracing exporter",
			Config{ServiceName: "buildcache", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}},
			ErrInvalidTracingExporter,
		},
		{
			"sample pct too high",
			Config{ServiceName: "buildcache", Tracing: TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5}},
			ErrInvalidSamplePct,
		},
		{
			"unknown metrics exporter",
			Config{ServiceName: "buildcache", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}},
			ErrInvalidMetricsExporter,
		},
		{
			"valid prometheus metrics",
			Config{ServiceName: "buildcache", Metrics: MetricsConfig{Enabled: true, Exporter: "prometheus"}},
			nil,
		},
		{
			"unknown log level",
			Config{ServiceName: "buildcache", Logging: LoggingConfig{Enabled: true, Level: "trace"}},
			ErrInvalidLogLevel,
		},
		{
			"valid logging",
			Config{ServiceName: "buildcache", Logging: LoggingConfig{Enabled: true, Level: "debug"}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_DisabledSubsystemsAreNoop(t *testing.T) {
	ctx := context.Background()

	obs, err := NewObserver(ctx, Config{ServiceName: "buildcache"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	if obs.Tracer() == nil {
		t.Error("Tracer() should not be nil when tracing is disabled")
	}
	if obs.Meter() == nil {
		t.Error("Meter() should not be nil when metrics are disabled")
	}
	if obs.Logger() == nil {
		t.Error("Logger() should not be nil when logging is disabled")
	}

	// Shutdown with no providers configured is a no-op
	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}

func TestNewObserver_InvalidConfigRejected(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestBuildMeta_SpanName(t *testing.T) {
	m := BuildMeta{Factory: "straight", Name: "straight_length10"}
	if got := m.SpanName(); got != "cell.build.straight" {
		t.Errorf("SpanName() = %q, want cell.build.straight", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
