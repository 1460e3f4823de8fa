package flowjit

import (
	"log/slog"

	"github.com/randalmurphal/flowjit/pkg/flowjit/codestore"
	"github.com/randalmurphal/flowjit/pkg/flowjit/config"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/observability"
)

// compileConfig holds configuration for one compilation.
type compileConfig struct {
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	optLevel  int
	store     codestore.Store
	compileID string
}

func defaultCompileConfig() compileConfig {
	return compileConfig{
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		optLevel: ir.OptFull,
	}
}

// Option configures a compilation.
type Option func(*compileConfig)

// WithLogger sets the logger. Compilations log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *compileConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *compileConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans through the global tracer provider:
// one "flowjit.compile" span with a child span per generated node.
func WithTracing(enabled bool) Option {
	return func(c *compileConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithOptLevel sets the backend optimization level: ir.OptNone, ir.OptFold
// or ir.OptFull (the default). Out of range values are ignored.
func WithOptLevel(level int) Option {
	return func(c *compileConfig) {
		if level >= ir.OptNone && level <= ir.OptFull {
			c.optLevel = level
		}
	}
}

// WithCodeStore records the generated code of every compilation in store,
// keyed by the graph fingerprint. A dump that differs from the stored one
// for the same key is logged and counted as drift.
func WithCodeStore(store codestore.Store) Option {
	return func(c *compileConfig) {
		c.store = store
	}
}

// WithCompileID sets the id used in logs and spans. A random UUID is used
// by default.
func WithCompileID(id string) Option {
	return func(c *compileConfig) {
		c.compileID = id
	}
}

// OptionsFromSettings translates config settings into options. The code
// store is not opened here; pass it with WithCodeStore.
func OptionsFromSettings(s config.Settings) []Option {
	return []Option{
		WithOptLevel(s.OptLevel),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}
}
