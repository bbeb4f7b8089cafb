// Package config holds the application configuration and its YAML
// load/save behavior, including first-run creation of a default file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PlacesConfig configures the external enrichment API.
type PlacesConfig struct {
	// BaseURL of the place/travel endpoint. Empty disables enrichment.
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
	// TimeoutSec bounds each lookup attempt.
	TimeoutSec int `yaml:"timeout_sec"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataDir is where the store and logs live.
	DataDir string `yaml:"data_dir"`

	// StoreFile is the event store backing file, relative to DataDir
	// unless absolute.
	StoreFile string `yaml:"store_file"`

	// TrainingLog is the CSV appended to when enriched events are
	// deleted. Empty disables the side-channel.
	TrainingLog string `yaml:"training_log"`

	// AutosaveCron is a cron expression for periodic saves while the
	// ingest daemon runs.
	AutosaveCron string `yaml:"autosave"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Places PlacesConfig `yaml:"places"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      defaultDataDir(),
		StoreFile:    "events.db",
		TrainingLog:  "",
		AutosaveCron: "*/5 * * * *",
		LogLevel:     "info",
		Places: PlacesConfig{
			APIKeyEnv:  "WAKECAL_PLACES_KEY",
			TimeoutSec: 10,
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave.
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.StoreFile == "" {
		c.StoreFile = "events.db"
	}
	if c.AutosaveCron == "" {
		c.AutosaveCron = "*/5 * * * *"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.Places.APIKeyEnv == "" {
		c.Places.APIKeyEnv = "WAKECAL_PLACES_KEY"
	}
	if c.Places.TimeoutSec <= 0 {
		c.Places.TimeoutSec = 10
	}
}

// StorePath returns the absolute path of the event store backing file.
func (c *Config) StorePath() string {
	return c.resolve(c.StoreFile)
}

// TrainingLogPath returns the absolute training log path, or "" when the
// side-channel is disabled.
func (c *Config) TrainingLogPath() string {
	if c.TrainingLog == "" {
		return ""
	}
	return c.resolve(c.TrainingLog)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Load reads the YAML config at path. A missing file yields a freshly
// written default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".wakecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "wakecal", "config.yaml")
}

func defaultDataDir() string {
	dataDir, err := os.UserConfigDir()
	if err != nil {
		dataDir = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(dataDir, "wakecal")
}
