package config

import (
	"log/slog"
	"time"
)

// Settings are the compiler knobs read from a config document.
type Settings struct {
	// OptLevel selects the backend optimization level (0, 1 or 2).
	OptLevel int
	// Metrics enables OpenTelemetry metrics.
	Metrics bool
	// Tracing enables OpenTelemetry spans.
	Tracing bool
	// LogLevel is the minimum level logged by the CLI.
	LogLevel slog.Level
	// CompileTimeout bounds a single compile; zero means no limit.
	CompileTimeout time.Duration
	// Parallelism bounds concurrent compiles in a batch; zero or less means unbounded.
	Parallelism int
	// CodeStorePath is the SQLite file recording generated code. Empty
	// disables the store; ":memory:" keeps it in memory.
	CodeStorePath string
}

// Defaults returns the settings used when a document says nothing.
func Defaults() Settings {
	return Settings{
		OptLevel: 2,
		LogLevel: slog.LevelInfo,
	}
}

// Settings extracts compiler settings from c, falling back to Defaults.
func (c Config) Settings() Settings {
	d := Defaults()
	level := c.Int("opt_level", d.OptLevel)
	if level < 0 || level > 2 {
		level = d.OptLevel
	}
	return Settings{
		OptLevel:       level,
		Metrics:        c.Bool("metrics", d.Metrics),
		Tracing:        c.Bool("tracing", d.Tracing),
		LogLevel:       c.LogLevel("log_level", d.LogLevel),
		CompileTimeout: c.Duration("compile_timeout", d.CompileTimeout),
		Parallelism:    c.Int("parallelism", d.Parallelism),
		CodeStorePath:  c.Sub("code_store").String("path", d.CodeStorePath),
	}
}

// Load reads settings from a file. An empty path yields Defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		return Defaults(), nil
	}
	c, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return c.Settings(), nil
}
