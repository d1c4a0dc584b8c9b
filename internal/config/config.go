package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davesmith10/jpgtranscode/internal/transcode"
)

// Config represents the jpgtranscode CLI configuration. Flags given on the
// command line override the values loaded from a file.
type Config struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Quality   int    `yaml:"quality"`    // 0-100
	Scale     int    `yaml:"scale"`      // DCT downscale: 1, 2, 4, 8
	KeepICC   bool   `yaml:"keep_icc"`   // carry the source ICC profile over
	ICC       string `yaml:"icc"`        // optional ICC profile to embed instead
	Optimize  bool   `yaml:"optimize"`   // optimal Huffman tables
	MaxPixels int    `yaml:"max_pixels"` // negative disables the limit
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input:     "images/js-wa-900.jpg",
		Output:    "out.jpg",
		Quality:   75,
		Scale:     1,
		MaxPixels: transcode.DefaultMaxPixels,
		LogLevel:  "info",
	}
}

// Load reads and parses a YAML configuration file. Keys missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
