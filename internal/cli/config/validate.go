package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/sqldrill/pkg/adapter"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine == nil || strings.TrimSpace(c.Engine.Type) == "" {
		return fmt.Errorf("engine type is required")
	}
	if _, ok := adapter.Get(c.Engine.Type); !ok {
		return &adapter.UnknownAdapterError{Type: c.Engine.Type, Available: adapter.ListAdapters()}
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive, got %s", c.QueryTimeout)
	}
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected auto, text, markdown or json)", c.OutputFormat)
	}
	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	return nil
}

// ValidateDirectories checks that a configured exercises directory exists.
func (c *Config) ValidateDirectories() error {
	if c.ExercisesDir == "" {
		return nil
	}
	if _, err := os.Stat(c.ExercisesDir); os.IsNotExist(err) {
		return fmt.Errorf("exercises directory does not exist: %s\nHint: Create the directory or use --exercises-dir to specify a different path", c.ExercisesDir)
	}
	return nil
}
