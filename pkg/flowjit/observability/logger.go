// Package observability provides structured logging, metrics and tracing
// for flowjit compilations.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds compile context to a logger.
// Returns a new logger with compile_id and function fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "c0ffee", "Diamond")
//	enriched.Info("resolving") // includes compile_id, function
func EnrichLogger(logger *slog.Logger, compileID, function string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("compile_id", compileID),
		slog.String("function", function),
	)
}

// LogCompileStart logs the start of a compilation.
func LogCompileStart(logger *slog.Logger, compileID, function string, inputs, outputs int) {
	if logger == nil {
		return
	}
	logger.Info("compile starting",
		slog.String("compile_id", compileID),
		slog.String("function", function),
		slog.Int("inputs", inputs),
		slog.Int("outputs", outputs),
	)
}

// LogCompileComplete logs a successful compilation.
func LogCompileComplete(logger *slog.Logger, compileID, function string, durationMs float64, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("compile completed",
		slog.String("compile_id", compileID),
		slog.String("function", function),
		slog.Float64("duration_ms", durationMs),
		slog.Int("required_nodes", nodeCount),
	)
}

// LogCompileError logs a failed compilation.
func LogCompileError(logger *slog.Logger, compileID, function string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("compile failed",
		slog.String("compile_id", compileID),
		slog.String("function", function),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeGenerated logs code generation for one node.
func LogNodeGenerated(logger *slog.Logger, node string, outputs int) {
	if logger == nil {
		return
	}
	logger.Debug("node generated",
		slog.String("node", node),
		slog.Int("outputs", outputs),
	)
}

// LogCodeDrift logs that the code generated for a graph differs from the
// stored code for the same fingerprint.
func LogCodeDrift(logger *slog.Logger, function, key string) {
	if logger == nil {
		return
	}
	logger.Warn("generated code drifted from stored copy",
		slog.String("function", function),
		slog.String("key", key),
	)
}

// LogCodeStoreError logs a code store failure (non-fatal).
func LogCodeStoreError(logger *slog.Logger, function, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("code store failed",
		slog.String("function", function),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
