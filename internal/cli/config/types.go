// Package config provides configuration management for the sqldrill CLI.
//
// Configuration is layered with koanf: defaults, then sqldrill.yaml, then
// SQLDRILL_ environment variables, then explicitly set flags.
package config

import (
	"time"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// EngineConfig selects and configures the practice engine.
type EngineConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
	Params   map[string]any    `koanf:"params"`
}

// AdapterConfig converts the engine section to the adapter configuration.
// For file-based engines Database doubles as the file path.
func (e *EngineConfig) AdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:     e.Type,
		Path:     e.Database,
		Database: e.Database,
		Host:     e.Host,
		Port:     e.Port,
		Username: e.User,
		Password: e.Password,
		Schema:   e.Schema,
		Options:  e.Options,
		Params:   e.Params,
	}
}

// UIConfig holds configuration for the web server.
type UIConfig struct {
	Port         int  `koanf:"port"`
	AutoOpen     bool `koanf:"auto_open"`
	Watch        bool `koanf:"watch"`
	PreviewLimit int  `koanf:"preview_limit"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:         DefaultUIPort,
		AutoOpen:     false,
		Watch:        true,
		PreviewLimit: DefaultPreviewLimit,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	if ui.PreviewLimit == 0 {
		ui.PreviewLimit = DefaultPreviewLimit
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	Engine       *EngineConfig `koanf:"engine"`
	StatePath    string        `koanf:"state_path"`
	ExercisesDir string        `koanf:"exercises_dir"`
	Learner      string        `koanf:"learner"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	UI           *UIConfig     `koanf:"ui"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultEngine       = "sqlite"
	DefaultStateFile    = ".sqldrill/state.db"
	DefaultLearner      = "local"
	DefaultQueryTimeout = 30 * time.Second
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIPort       = 8787
	DefaultPreviewLimit = 10
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Engine:       &EngineConfig{Type: DefaultEngine, Database: ":memory:"},
		StatePath:    DefaultStateFile,
		Learner:      DefaultLearner,
		QueryTimeout: DefaultQueryTimeout,
		OutputFormat: DefaultOutput,
		UI:           DefaultUIConfig(),
	}
}
