package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the finsight client.
type Config struct {
	API     API     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// API holds the remote StockFolo API endpoint configuration.
type API struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Storage holds paths for durable client state.
type Storage struct {
	// StatePath is the SQLite database holding the bearer token and the
	// per-symbol response cache.
	StatePath string `yaml:"state_path"`

	// CacheTTLSeconds controls how long cached quote/history/news responses
	// are served without hitting the network. Zero disables caching.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Timeout returns the HTTP request timeout as a duration.
func (a API) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CacheTTL returns the cache freshness window as a duration.
func (s Storage) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "https://stockfolo.onrender.com/api/v1"
	cfg.API.TimeoutSeconds = 30
	cfg.Storage.StatePath = defaultStatePath()
	cfg.Storage.CacheTTLSeconds = 60
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct on top of the defaults, and then applies environment variable
// overrides. A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINSIGHT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("FINSIGHT_STATE_PATH"); v != "" {
		cfg.Storage.StatePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// defaultStatePath places the state database under the user config dir,
// falling back to the working directory when it cannot be resolved.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "finsight.db"
	}
	return filepath.Join(dir, "finsight", "state.db")
}
