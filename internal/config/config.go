// Package config is used to load the configuration file
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type api struct {
	URL            string `json:"url"`
	Key            string `json:"key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type symbols struct {
	SearchDirs []string `json:"search_dirs"`
	CacheDir   string   `json:"cache_dir"`
}

type game struct {
	ID          string `json:"id"`
	DataDir     string `json:"data_dir"`
	PluginsFile string `json:"plugins_file"`
}

// Config is the configuration struct
type Config struct {
	API     api     `json:"api"`
	Symbols symbols `json:"symbols"`
	Game    game    `json:"game"`
}

func (c *Config) verify() error {
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("config: api timeout cannot be negative")
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 10
	}
	if c.Symbols.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: failed to get user home directory: %v", err)
		}
		c.Symbols.CacheDir = filepath.Join(home, ".config", "crashmon", "symbols")
	}
	if c.Game.PluginsFile != "" && c.Game.ID == "" {
		return fmt.Errorf("config: game id must be set when a plugins file is configured")
	}
	return nil
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
