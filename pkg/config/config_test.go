package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadJSONSourcesAndSinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	if err := os.WriteFile(path, []byte(`{"sources":["wx.getStorageSync"],"sinks":["wx.request"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Allows("wx.getStorageSync", "wx.request") {
		t.Fatalf("expected matching pair to pass")
	}
	if cfg.Allows("wx.getClipboardData", "wx.request") {
		t.Fatalf("expected non-matching source to fail")
	}
}

func TestLoadYAMLEquivalent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  - wx.getStorageSync\nsinks:\n  - wx.request\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Allows("wx.getStorageSync", "wx.request") {
		t.Fatalf("expected matching pair to pass")
	}
}

func TestEmptyConfigAllowsEverything(t *testing.T) {
	cfg := Empty()
	if !cfg.Allows("anything", "whatever") {
		t.Fatalf("expected unfiltered config to allow all pairs")
	}
}

func TestDoubleBindingPseudoSource(t *testing.T) {
	cfg := &Config{Sources: map[string]bool{DoubleBindingSource: true}}
	if !cfg.Allows("[data from double binding: u, type: text]", "wx.request") {
		t.Fatalf("expected double-binding pseudo-source to match")
	}
	if cfg.Allows("wx.getStorageSync", "wx.request") {
		t.Fatalf("expected plain source to be rejected when only pseudo-source configured")
	}
}
