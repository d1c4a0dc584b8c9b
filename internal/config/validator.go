package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/davesmith10/jpgtranscode/internal/transcode"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if cfg.Input == "" {
		return fmt.Errorf("input is required")
	}
	if cfg.Output == "" {
		return fmt.Errorf("output is required")
	}

	if cfg.Quality < 0 || cfg.Quality > 100 {
		return fmt.Errorf("quality must be within 0-100, got %d", cfg.Quality)
	}

	switch cfg.Scale {
	case 0:
		cfg.Scale = 1 // default
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("scale must be 1, 2, 4 or 8, got %d", cfg.Scale)
	}

	if cfg.MaxPixels == 0 {
		cfg.MaxPixels = transcode.DefaultMaxPixels
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}
