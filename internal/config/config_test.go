package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("FINSIGHT_API_URL")
	os.Unsetenv("FINSIGHT_STATE_PATH")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_FORMAT")

	yamlContent := []byte(`
api:
  base_url: "http://localhost:5000/api/v1"
  timeout_seconds: 10
storage:
  state_path: "/tmp/finsight/state.db"
  cache_ttl_seconds: 120
logging:
  level: "debug"
  format: "json"
`)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:5000/api/v1" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://localhost:5000/api/v1")
	}
	if cfg.API.Timeout() != 10*time.Second {
		t.Errorf("API.Timeout() = %v, want %v", cfg.API.Timeout(), 10*time.Second)
	}
	if cfg.Storage.StatePath != "/tmp/finsight/state.db" {
		t.Errorf("Storage.StatePath = %q, want %q", cfg.Storage.StatePath, "/tmp/finsight/state.db")
	}
	if cfg.Storage.CacheTTL() != 2*time.Minute {
		t.Errorf("Storage.CacheTTL() = %v, want %v", cfg.Storage.CacheTTL(), 2*time.Minute)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	os.Unsetenv("FINSIGHT_API_URL")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}

	if cfg.API.BaseURL == "" {
		t.Error("API.BaseURL is empty, want default")
	}
	if cfg.API.Timeout() != 30*time.Second {
		t.Errorf("API.Timeout() = %v, want %v", cfg.API.Timeout(), 30*time.Second)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
api:
  base_url: "http://yaml-host/api/v1"
logging:
  level: "info"
`)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	os.Setenv("FINSIGHT_API_URL", "http://env-host/api/v1")
	os.Setenv("LOG_LEVEL", "warn")
	defer os.Unsetenv("FINSIGHT_API_URL")
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.API.BaseURL != "http://env-host/api/v1" {
		t.Errorf("API.BaseURL = %q, want %q (env override)", cfg.API.BaseURL, "http://env-host/api/v1")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "warn")
	}
	// Format had no override and no YAML value: default applies.
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q (default)", cfg.Logging.Format, "text")
	}
}
