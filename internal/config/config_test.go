// Tests for configuration loading and defaults
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if cfg.IndexDir != "indexes" {
		t.Errorf("Expected default index dir, got %q", cfg.IndexDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.WebSearch.APIKeyEnv != "SERPER_API_KEY" {
		t.Errorf("Expected default API key env, got %q", cfg.WebSearch.APIKeyEnv)
	}
	if cfg.WebSearch.TimeoutSecs != 10 {
		t.Errorf("Expected default timeout, got %d", cfg.WebSearch.TimeoutSecs)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("index_dir: /srv/sop/indexes\nmetrics_port: 9100\nlog:\n  level: debug\n  pretty: true\nweb_search:\n  timeout_secs: 3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if cfg.IndexDir != "/srv/sop/indexes" {
		t.Errorf("Unexpected index dir: %q", cfg.IndexDir)
	}
	if cfg.MetricsPort != 9100 {
		t.Errorf("Unexpected metrics port: %d", cfg.MetricsPort)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if cfg.WebSearch.TimeoutSecs != 3 {
		t.Errorf("Unexpected timeout: %d", cfg.WebSearch.TimeoutSecs)
	}
	// Unset fields still receive defaults
	if cfg.WebSearch.APIKeyEnv != "SERPER_API_KEY" {
		t.Errorf("Expected default API key env, got %q", cfg.WebSearch.APIKeyEnv)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("Expected error for invalid YAML")
	}
}
