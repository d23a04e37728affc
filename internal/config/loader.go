package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load returns a Config for configDir using the hierarchy:
// defaults < daylog.yaml < ENV. The YAML file is optional.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if err := loadYAML(cfg, cfg.ConfigPath()); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.API.BaseURL, "DAYLOG_API_URL")
	setDuration(&cfg.API.Timeout, "DAYLOG_API_TIMEOUT")
	setString(&cfg.Realtime.URL, "DAYLOG_WS_URL")
	setInt(&cfg.Realtime.MaxAttempts, "DAYLOG_REALTIME_MAX_ATTEMPTS")
	setString(&cfg.Stream.Mode, "DAYLOG_STREAM_MODE")
	setDuration(&cfg.Stream.Timeout, "DAYLOG_STREAM_TIMEOUT")
	setDuration(&cfg.Stream.TypingDelay, "DAYLOG_TYPING_DELAY")
	setString(&cfg.AI.Model, "DAYLOG_MODEL")
	setBool(&cfg.Breakdown.StrictDependencies, "DAYLOG_STRICT_DEPENDENCIES")
	setString(&cfg.Logging.Level, "DAYLOG_LOG_LEVEL")
	setString(&cfg.Logging.Format, "DAYLOG_LOG_FORMAT")
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if cfg.Stream.Timeout <= 0 {
		return errors.New("stream.timeout must be positive")
	}
	if cfg.Stream.TypingDelay < 0 {
		return errors.New("stream.typing_delay must not be negative")
	}
	switch cfg.Stream.Mode {
	case StreamModeAuto, StreamModeIncremental, StreamModeBuffered:
	default:
		return fmt.Errorf("stream.mode must be auto, incremental or buffered, got %q", cfg.Stream.Mode)
	}
	if cfg.Realtime.MaxAttempts < 1 {
		return errors.New("realtime.max_attempts must be at least 1")
	}
	if cfg.Realtime.InitialBackoff <= 0 || cfg.Realtime.MaxBackoff < cfg.Realtime.InitialBackoff {
		return errors.New("realtime backoff must satisfy 0 < initial_backoff <= max_backoff")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
