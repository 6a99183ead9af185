// Package config provides configuration management for the zipper tools.
package config

import (
	"encoding/json"
	"os"
)

// Config holds the shared tool configuration.
type Config struct {
	// Encoding
	BlockSize int `json:"block_size"`

	// Output naming
	PatchSuffix   string `json:"patch_suffix"`
	RebuildOutput string `json:"rebuild_output"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BlockSize:     64,
		PatchSuffix:   "_patch.bin",
		RebuildOutput: "rebuilt.bin",
	}
}

// Load loads configuration from a JSON file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
