// Package config handles the XDG configuration directory and runtime settings.
// Precedence: defaults < daylog.yaml < environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "daylog"

	// ConfigFile is the optional YAML settings filename.
	ConfigFile = "daylog.yaml"

	// StateDirName is the directory holding the local state database.
	StateDirName = "state"
)

// Stream consumption modes.
const (
	StreamModeAuto        = "auto"
	StreamModeIncremental = "incremental"
	StreamModeBuffered    = "buffered"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	API       API       `yaml:"api"`
	Realtime  Realtime  `yaml:"realtime"`
	Stream    Stream    `yaml:"stream"`
	AI        AI        `yaml:"ai"`
	Breakdown Breakdown `yaml:"breakdown"`
	Logging   Logging   `yaml:"logging"`
}

// API holds REST backend settings.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // per REST call (default: 60s)
}

// Realtime holds notification channel settings.
type Realtime struct {
	URL            string        `yaml:"url"`
	MaxAttempts    int           `yaml:"max_attempts"`    // consecutive failures before giving up (default: 5)
	InitialBackoff time.Duration `yaml:"initial_backoff"` // default: 1s
	MaxBackoff     time.Duration `yaml:"max_backoff"`     // default: 30s
}

// Stream holds streaming AI response settings.
type Stream struct {
	Mode        string        `yaml:"mode"`         // "auto" | "incremental" | "buffered"
	Timeout     time.Duration `yaml:"timeout"`      // whole session (default: 60s)
	TypingDelay time.Duration `yaml:"typing_delay"` // per line in buffered mode (default: 20ms)
}

// AI holds model selection.
type AI struct {
	Model string `yaml:"model"`
}

// Breakdown holds task breakdown handling.
type Breakdown struct {
	// StrictDependencies rejects breakdowns whose subtasks depend on
	// themselves, later subtasks, or out-of-range positions.
	StrictDependencies bool `yaml:"strict_dependencies"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
}

// Defaults returns a Config with default values and no directory.
func Defaults() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:3000/api",
			Timeout: 60 * time.Second,
		},
		Realtime: Realtime{
			URL:            "ws://localhost:3000/ws",
			MaxAttempts:    5,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
		Stream: Stream{
			Mode:        StreamModeAuto,
			Timeout:     60 * time.Second,
			TypingDelay: 20 * time.Millisecond,
		},
		AI: AI{
			Model: "default",
		},
		Logging: Logging{
			Level:  "warn",
			Format: "text",
		},
	}
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/daylog or $HOME/.config/daylog.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Defaults()
	cfg.Dir = dir
	return &cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the YAML settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// StateDir returns the directory of the local state database.
func (c *Config) StateDir() string {
	return filepath.Join(c.Dir, StateDirName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
