package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration, loaded from a TOML file.
type Config struct {
	Server ServerConfig `toml:"server"`
	State  StateConfig  `toml:"state"`
}

// ServerConfig points the CLI at a bookshelf API server.
type ServerConfig struct {
	URL string `toml:"url"`
}

// StateConfig controls where the session token, save-state cache, and
// last search results live.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no config file is
// present: a local server and per-user state under the OS config dir.
func DefaultConfig() *Config {
	stateDir := ".bookshelf"
	if configDir, err := os.UserConfigDir(); err == nil {
		stateDir = filepath.Join(configDir, "bookshelf")
	}
	return &Config{
		Server: ServerConfig{URL: "http://localhost:3001"},
		State:  StateConfig{Dir: stateDir},
	}
}

// LoadConfig reads and parses a TOML configuration file. Missing fields
// fall back to the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}
