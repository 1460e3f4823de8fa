package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by FromFile for a file whose extension
// names no known document format.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FromFile reads a settings document. The extension picks the format:
// .yaml, .yml or .json. JSON documents go through the YAML decoder, which
// accepts them unchanged.
func FromFile(path string) (Config, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return Config{}, fmt.Errorf("config %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML decodes a document. An empty document yields an empty Config.
func FromYAML(data []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return New(doc), nil
}
