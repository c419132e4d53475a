package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the traderterm client.
type Config struct {
	Server   Server   `yaml:"server"`
	Sessions []string `yaml:"sessions"`
	Poll     Poll     `yaml:"poll"`
	Journal  Journal  `yaml:"journal"`
	Logging  Logging  `yaml:"logging"`
}

// Server locates the order service.
type Server struct {
	BaseURL string `yaml:"base_url"`
	// FormAction is the legacy URL-encoded order submission path.
	FormAction string `yaml:"form_action"`
}

// Poll controls snapshot polling for the order and execution blotters.
type Poll struct {
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the polling interval as a duration.
func (p Poll) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Journal holds the local submission-journal location. An empty path
// disables journaling.
type Journal struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// Load reads the YAML configuration file at the given path, fills in
// defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Server.FormAction == "" {
		cfg.Server.FormAction = "/order"
	}
	if cfg.Poll.IntervalMS <= 0 {
		cfg.Poll.IntervalMS = 1000
	}
	if len(cfg.Sessions) == 0 {
		cfg.Sessions = []string{"FIX.4.4:TRADERTERM->SIM"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADERTERM_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TRADERTERM_JOURNAL_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("TRADERTERM_POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Poll.IntervalMS = ms
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
