package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// AppPort switches the server to the streamable HTTP transport when
	// set; 0 means stdio.
	AppPort int `yaml:"app_port"`

	DefaultMaxResults   int    `yaml:"default_max_results"`
	MaxResultsLimit     int    `yaml:"max_results_limit"`
	SearchTimeoutSecs   int    `yaml:"search_timeout_seconds"`
	FetchTimeoutSecs    int    `yaml:"fetch_timeout_seconds"`
	ProxyURL            string `yaml:"proxy_url"`
}

func defaults() *Config {
	return &Config{
		DefaultMaxResults: 10,
		MaxResultsLimit:   20,
		SearchTimeoutSecs: 15,
		FetchTimeoutSecs:  15,
	}
}

// Load builds the configuration from defaults, an optional YAML file named
// by CONFIG_PATH, and environment variable overrides, in that order.
// Nothing is mandatory.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultMaxResults < 1 {
		cfg.DefaultMaxResults = 1
	}
	if cfg.MaxResultsLimit < cfg.DefaultMaxResults {
		cfg.MaxResultsLimit = cfg.DefaultMaxResults
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	for _, binding := range []struct {
		key    string
		target *int
	}{
		{"APP_PORT", &cfg.AppPort},
		{"DEFAULT_MAX_RESULTS", &cfg.DefaultMaxResults},
		{"MAX_RESULTS_LIMIT", &cfg.MaxResultsLimit},
		{"SEARCH_TIMEOUT_SECONDS", &cfg.SearchTimeoutSecs},
		{"FETCH_TIMEOUT_SECONDS", &cfg.FetchTimeoutSecs},
	} {
		value := os.Getenv(binding.key)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", binding.key, value, err)
		}
		*binding.target = parsed
	}

	if proxy := os.Getenv("PROXY_URL"); proxy != "" {
		cfg.ProxyURL = proxy
	}

	return nil
}
