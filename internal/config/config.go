// Package config loads the server configuration from YAML with defaults.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// WebSearchConfig configures the external web-search collaborator.
type WebSearchConfig struct {
	// APIKeyEnv names the environment variable holding the API key.
	// An unset variable disables web search instead of failing.
	APIKeyEnv string `yaml:"api_key_env"`
	// Endpoint overrides the search API URL, mainly for tests.
	Endpoint string `yaml:"endpoint"`
	// TimeoutSecs bounds the outbound call.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// AppConfig is the root configuration.
type AppConfig struct {
	// IndexDir holds the artifacts written by the offline indexer.
	IndexDir string `yaml:"index_dir"`
	// MetricsPort serves Prometheus metrics when non-zero.
	MetricsPort int             `yaml:"metrics_port"`
	Log         LogConfig       `yaml:"log"`
	WebSearch   WebSearchConfig `yaml:"web_search"`
}

// Load reads the config from path. A missing file returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.IndexDir == "" {
		cfg.IndexDir = "indexes"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.WebSearch.APIKeyEnv == "" {
		cfg.WebSearch.APIKeyEnv = "SERPER_API_KEY"
	}
	if cfg.WebSearch.TimeoutSecs == 0 {
		cfg.WebSearch.TimeoutSecs = 10
	}
}
