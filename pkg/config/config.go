// Package config loads the taint resolver's filter configuration
// (spec.md §6: "a JSON config with optional keys sources, sinks"),
// accepting either JSON or YAML on disk. JSON is read with gjson (no
// struct binding required for a config this shallow); YAML support
// is layered on top via goccy/go-yaml, converting to the same JSON
// text so both paths share one gjson-backed accessor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

// DoubleBindingSource is the pseudo-source spec.md §4.F/§6 names: it
// matches any "[data from …]" source string regardless of config.
const DoubleBindingSource = "[double_binding]"

// Config is the resolved source/sink filter. A nil Sources or Sinks set
// means "unfiltered" on that axis (spec.md §4.F.4.a).
type Config struct {
	Sources map[string]bool
	Sinks   map[string]bool
}

// Empty returns the all-pairs-pass configuration used when no -c/--config
// flag is given.
func Empty() *Config { return &Config{} }

// Load reads path (JSON or YAML, chosen by extension) and returns a
// Config. A missing path is a caller error, not handled here (the CLI
// treats a bad config path as an I/O setup failure per spec.md §6).
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	jsonText := raw
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		var generic interface{}
		if uerr := yaml.Unmarshal(raw, &generic); uerr != nil {
			return nil, fmt.Errorf("config: parse yaml %s: %w", path, uerr)
		}
		converted, jerr := json.Marshal(generic)
		if jerr != nil {
			return nil, fmt.Errorf("config: convert yaml %s: %w", path, jerr)
		}
		jsonText = converted
	}

	result := gjson.ParseBytes(jsonText)
	cfg := &Config{}

	if sources := result.Get("sources"); sources.Exists() {
		cfg.Sources = map[string]bool{}
		for _, s := range sources.Array() {
			cfg.Sources[s.String()] = true
		}
	}
	if sinks := result.Get("sinks"); sinks.Exists() {
		cfg.Sinks = map[string]bool{}
		for _, s := range sinks.Array() {
			cfg.Sinks[s.String()] = true
		}
	}

	return cfg, nil
}

// Allows reports whether the (source, sink) pair survives this config's
// filter (spec.md §4.F.4): unfiltered axes always pass; the
// double-binding pseudo-source matches any "[data from …]" source.
func (c *Config) Allows(source, sink string) bool {
	if c.Sources != nil {
		if !c.Sources[source] && !(c.Sources[DoubleBindingSource] && strings.HasPrefix(source, "[data from")) {
			return false
		}
	}
	if c.Sinks != nil && !c.Sinks[sink] {
		return false
	}
	return true
}
