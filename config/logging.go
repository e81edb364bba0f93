package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is a zerolog level name such as "debug" or "warn".
	Level string `json:"level"`
	// Format is "json" or "console". Empty selects console output when
	// APP_ENV=dev and JSON otherwise.
	Format string `json:"format"`
}

// DefaultLogConfig returns info level logs in the automatic format.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// Validate checks the level and format names.
func (c LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log: unknown format %s", c.Format)
	}
	return nil
}
