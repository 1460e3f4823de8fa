/*
Package config reads compiler settings from YAML or JSON documents.

Values are read through typed accessors over a map[string]any. An accessor
never fails: a missing key or a value of the wrong shape yields the caller's
default.

	cfg, err := config.FromFile("flowjit.yaml")
	if err != nil {
	    return err
	}
	level := cfg.Int("opt_level", 2)
	store := cfg.Sub("code_store").String("path", "")

Load turns a document into Settings, the knobs understood by the compiler:

	opt_level: 2            # 0 none, 1 constant folding, 2 folding + dead code
	metrics: true
	tracing: false
	log_level: debug        # debug, info, warn, error
	compile_timeout: 5s
	parallelism: 4
	code_store:
	  path: build/code.db   # empty or ":memory:" for an in-memory store

Config is safe for concurrent reads once built.
*/
package config
