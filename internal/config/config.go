// Package config handles application configuration stored as TOML in the
// user's home directory.
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
	// Simulation defaults
	Simulation SimulationConfig `toml:"simulation"`

	// Card cache configuration
	Cache CacheConfig `toml:"cache"`

	// Output configuration
	Output OutputConfig `toml:"output"`
}

// SimulationConfig contains default simulation settings.
type SimulationConfig struct {
	Trials   int   `toml:"trials"`   // Trials per run
	Seed     int64 `toml:"seed"`     // Base seed (0 = derive from time)
	Parallel bool  `toml:"parallel"` // Use the parallel backend
	Workers  int   `toml:"workers"`  // Worker goroutines (0 = NumCPU)
}

// CacheConfig contains card cache settings.
type CacheConfig struct {
	Path       string `toml:"path"`        // SQLite database path ("" = default)
	StaleAfter string `toml:"stale_after"` // Refetch threshold (e.g., "168h")
}

// OutputConfig contains result presentation settings.
type OutputConfig struct {
	ChartDir    string `toml:"chart_dir"`    // Directory for HTML chart exports
	SampleGames int    `toml:"sample_games"` // Sample game logs to print (-1 = first, middle, last)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Trials:   1000,
			Seed:     0,
			Parallel: true,
			Workers:  0,
		},
		Cache: CacheConfig{
			Path:       "",
			StaleAfter: "168h",
		},
		Output: OutputConfig{
			ChartDir:    "",
			SampleGames: -1,
		},
	}
}

// configDir returns the application directory, creating it if needed.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".manalysis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultCachePath returns the default card cache database path.
func DefaultCachePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cards.db"), nil
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
	if c.Simulation.Trials < 0 {
		return fmt.Errorf("trials cannot be negative: %d", c.Simulation.Trials)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Simulation.Workers)
	}
	if c.Output.SampleGames < -1 {
		return fmt.Errorf("sample games must be -1 or more, got %d", c.Output.SampleGames)
	}
	if _, err := time.ParseDuration(c.Cache.StaleAfter); err != nil {
		return fmt.Errorf("invalid stale_after %q: %w", c.Cache.StaleAfter, err)
	}
	return nil
}

// GetStaleAfter returns the cache refetch threshold as a duration.
func (c *Config) GetStaleAfter() (time.Duration, error) {
	return time.ParseDuration(c.Cache.StaleAfter)
}
