// Package config loads and persists the deckforge configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Scryfall card data configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Meta API configuration
	Meta MetaConfig `toml:"meta"`

	// HTTP editor API configuration
	API APIConfig `toml:"api"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DatabaseConfig contains local database settings.
type DatabaseConfig struct {
	Path      string `toml:"path"`       // Path to the SQLite database
	BackupDir string `toml:"backup_dir"` // Directory for database backups
}

// ScryfallConfig contains card data provider settings.
type ScryfallConfig struct {
	BaseURL  string `toml:"base_url"`  // Scryfall API base URL
	StaleTTL string `toml:"stale_ttl"` // Cached card freshness window (e.g., "168h")
	FetchArt bool   `toml:"fetch_art"` // Keep art crop URLs in the cache
}

// MetaConfig contains companion meta API settings.
type MetaConfig struct {
	BaseURL  string `toml:"base_url"`  // Meta API base URL
	APIKey   string `toml:"api_key"`   // x-api-key header value
	ClientID string `toml:"client_id"` // x-client-id header value
}

// APIConfig contains HTTP editor API settings.
type APIConfig struct {
	Enabled bool `toml:"enabled"` // Serve the editor API alongside the shell
	Port    int  `toml:"port"`    // Listen port
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "", // resolved relative to the config directory when empty
			BackupDir: "",
		},
		Scryfall: ScryfallConfig{
			BaseURL:  "https://api.scryfall.com",
			StaleTTL: "168h",
			FetchArt: true,
		},
		Meta: MetaConfig{
			BaseURL:  "",
			APIKey:   "",
			ClientID: "",
		},
		API: APIConfig{
			Enabled: false,
			Port:    8000,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the configuration directory, creating it if necessary.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".deckforge")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Scryfall.StaleTTL); err != nil {
		return fmt.Errorf("invalid scryfall stale TTL %q: %w", c.Scryfall.StaleTTL, err)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}

	if c.Meta.APIKey != "" && c.Meta.ClientID == "" {
		return fmt.Errorf("meta client_id is required when api_key is set")
	}

	return nil
}

// DatabasePath returns the configured database path, or the default
// location inside the config directory when unset.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deckforge.db"), nil
}

// BackupDir returns the configured backup directory, or the default
// location inside the config directory when unset.
func (c *Config) BackupDir() (string, error) {
	if c.Database.BackupDir != "" {
		return c.Database.BackupDir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}

// GetStaleTTL returns the card cache freshness window as a duration.
func (c *Config) GetStaleTTL() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.StaleTTL)
}
