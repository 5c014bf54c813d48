// Package config loads application settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"currency-swap/internal/pricefeed"
	"currency-swap/internal/submission"
	"currency-swap/internal/swapform"
)

// Environment variables that override file values.
const (
	EnvFeedURL    = "SWAP_FEED_URL"
	EnvLogLevel   = "SWAP_LOG_LEVEL"
	EnvLogFormat  = "SWAP_LOG_FORMAT"
	EnvServerAddr = "SWAP_SERVER_ADDR"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all settings.
type Config struct {
	Feed struct {
		URL        string   `yaml:"url"`
		Timeout    Duration `yaml:"timeout"`
		MaxRetries int      `yaml:"max_retries"`
		RetryDelay Duration `yaml:"retry_delay"`
		UserAgent  string   `yaml:"user_agent"`
	} `yaml:"feed"`

	Form struct {
		DefaultAmount string `yaml:"default_amount"`
	} `yaml:"form"`

	Submission struct {
		Latency Duration `yaml:"latency"`
	} `yaml:"submission"`

	Server struct {
		Addr            string   `yaml:"addr"`
		RefreshPerMin   float64  `yaml:"refresh_per_min"`
		RefreshBurst    int      `yaml:"refresh_burst"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
	} `yaml:"logging"`
}

// Duration is a time.Duration that reads from YAML strings like "1.1s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() *Config {
	var cfg Config
	cfg.Feed.URL = pricefeed.DefaultURL
	cfg.Feed.Timeout = Duration(pricefeed.DefaultTimeout)
	cfg.Feed.RetryDelay = Duration(pricefeed.DefaultRetryDelay)
	cfg.Feed.UserAgent = pricefeed.DefaultUserAgent
	cfg.Form.DefaultAmount = swapform.DefaultAmount
	cfg.Submission.Latency = Duration(submission.DefaultLatency)
	cfg.Server.Addr = ":8080"
	cfg.Server.RefreshPerMin = 30
	cfg.Server.RefreshBurst = 3
	cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return &cfg
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv(EnvFeedURL); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Feed.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: feed url %q", ErrInvalidConfig, c.Feed.URL)
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("%w: feed timeout must be positive", ErrInvalidConfig)
	}
	if c.Feed.MaxRetries < 0 {
		return fmt.Errorf("%w: feed max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Submission.Latency < 0 {
		return fmt.Errorf("%w: submission latency must not be negative", ErrInvalidConfig)
	}
	if c.Server.RefreshPerMin <= 0 || c.Server.RefreshBurst <= 0 {
		return fmt.Errorf("%w: refresh rate limit must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	if _, err := strconv.ParseFloat(strings.TrimSpace(c.Form.DefaultAmount), 64); err != nil && c.Form.DefaultAmount != "" {
		return fmt.Errorf("%w: default amount %q", ErrInvalidConfig, c.Form.DefaultAmount)
	}

	return nil
}
