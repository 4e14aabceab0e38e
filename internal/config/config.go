// Package config loads the server configuration from a YAML file,
// falling back to defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/plank/internal/identity"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Logging  LoggingConfig   `yaml:"logging"`
	Users    []identity.User `yaml:"users"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig controls the sqlite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty means stderr
}

// Load loads config from path, or from the user's config directory when
// path is empty. A missing file yields the default config.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return defaultConfig(), nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// defaultConfigPath returns the path to the config file
func defaultConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "plank", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "plank", "config.yaml"), nil
}

func defaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8484"
	}
	if c.Database.Path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.Database.Path = filepath.Join(homeDir, ".plank", "plank.db")
		} else {
			c.Database.Path = "plank.db"
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
