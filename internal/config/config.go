// Package config loads scrape settings from an optional YAML file.
// Missing file means defaults; CLI flags override whatever was loaded.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the scrape configuration.
const (
	DefaultBaseURL        = "http://stoltzen.no"
	DefaultUserAgent      = "stoltzen-results/1.0 (github.com/mkleiven/stoltzen-results)"
	DefaultTimeoutSeconds = 10
	DefaultWorkers        = 10
	DefaultFormat         = "text"
)

// Config holds the settings read from the config file.
type Config struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Workers        int    `yaml:"workers"`
	Year           int    `yaml:"year"`
	Format         string `yaml:"format"`
	DataDir        string `yaml:"data_dir"`
}

// Default returns the configuration used when no config file exists.
// Year defaults to the current calendar year.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Workers:        DefaultWorkers,
		Year:           time.Now().Year(),
		Format:         DefaultFormat,
	}
}

// Load reads the config file at path, or ~/.stoltzen-results/config.yaml
// when path is empty. A missing file is not an error and yields the
// defaults; a file that exists but cannot be parsed is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".stoltzen-results", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Year < 2000 {
		return fmt.Errorf("year must be 2000 or later, got %d", c.Year)
	}
	return nil
}
