package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppPort != 0 {
		t.Errorf("AppPort = %d, want 0 (stdio)", cfg.AppPort)
	}
	if cfg.DefaultMaxResults != 10 {
		t.Errorf("DefaultMaxResults = %d, want 10", cfg.DefaultMaxResults)
	}
	if cfg.MaxResultsLimit != 20 {
		t.Errorf("MaxResultsLimit = %d, want 20", cfg.MaxResultsLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DEFAULT_MAX_RESULTS", "5")
	t.Setenv("PROXY_URL", "http://localhost:9050")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.DefaultMaxResults != 5 {
		t.Errorf("DefaultMaxResults = %d, want 5", cfg.DefaultMaxResults)
	}
	if cfg.ProxyURL != "http://localhost:9050" {
		t.Errorf("ProxyURL = %q", cfg.ProxyURL)
	}
}

func TestLoadInvalidEnvValue(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric APP_PORT")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "app_port: 9090\nmax_results_limit: 30\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppPort != 9090 {
		t.Errorf("AppPort = %d, want 9090", cfg.AppPort)
	}
	if cfg.MaxResultsLimit != 30 {
		t.Errorf("MaxResultsLimit = %d, want 30", cfg.MaxResultsLimit)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app_port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppPort != 7070 {
		t.Errorf("AppPort = %d, want 7070 (env wins)", cfg.AppPort)
	}
}
