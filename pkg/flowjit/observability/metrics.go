package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowjit metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records a finished compilation, its duration, the number
	// of required nodes and its error status.
	RecordCompile(ctx context.Context, function string, duration time.Duration, nodes int, err error)

	// RecordNodeGeneration records code generation for one node.
	RecordNodeGeneration(ctx context.Context, node string, err error)

	// RecordCodeDrift records a stored-code mismatch.
	RecordCodeDrift(ctx context.Context, function string)
}

type otelMetrics struct {
	compiles        metric.Int64Counter
	compileLatency  metric.Float64Histogram
	compileErrors   metric.Int64Counter
	requiredNodes   metric.Int64Histogram
	nodeGenerations metric.Int64Counter
	codeDrift       metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowjit")

	compiles, err := meter.Int64Counter("flowjit.compile.count",
		metric.WithDescription("Number of graph compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileLatency, err := meter.Float64Histogram("flowjit.compile.latency_ms",
		metric.WithDescription("Compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	compileErrors, err := meter.Int64Counter("flowjit.compile.errors",
		metric.WithDescription("Number of failed compilations"),
	)
	if err != nil {
		return nil, err
	}

	requiredNodes, err := meter.Int64Histogram("flowjit.compile.required_nodes",
		metric.WithDescription("Nodes in the required subgraph of a compilation"),
	)
	if err != nil {
		return nil, err
	}

	nodeGenerations, err := meter.Int64Counter("flowjit.node.generations",
		metric.WithDescription("Number of node code generations"),
	)
	if err != nil {
		return nil, err
	}

	codeDrift, err := meter.Int64Counter("flowjit.codestore.drift",
		metric.WithDescription("Generated code differing from the stored copy"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compiles:        compiles,
		compileLatency:  compileLatency,
		compileErrors:   compileErrors,
		requiredNodes:   requiredNodes,
		nodeGenerations: nodeGenerations,
		codeDrift:       codeDrift,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, function string, duration time.Duration, nodes int, err error) {
	attrs := metric.WithAttributes(
		attribute.String("function", function),
		attribute.Bool("success", err == nil),
	)
	m.compiles.Add(ctx, 1, attrs)
	m.compileLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.compileErrors.Add(ctx, 1, attrs)
		return
	}
	m.requiredNodes.Record(ctx, int64(nodes), attrs)
}

// RecordNodeGeneration records a node generation.
func (m *otelMetrics) RecordNodeGeneration(ctx context.Context, node string, err error) {
	m.nodeGenerations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.Bool("success", err == nil),
	))
}

// RecordCodeDrift records a stored-code mismatch.
func (m *otelMetrics) RecordCodeDrift(ctx context.Context, function string) {
	m.codeDrift.Add(ctx, 1, metric.WithAttributes(attribute.String("function", function)))
}
