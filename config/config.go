package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	DefaultPort    = "3000"
	DefaultTimeout = 30 * time.Second
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port          string
	Timeout       time.Duration
	UserAgent     string
	BlocklistPath string
	LogLevel      zapcore.Level
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv, falling back to defaults
// for unset variables.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:          DefaultPort,
		Timeout:       DefaultTimeout,
		UserAgent:     getenv("PROXY_USER_AGENT"),
		BlocklistPath: getenv("PROXY_BLOCKLIST"),
		LogLevel:      zapcore.InfoLevel,
	}

	if v := getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = v
	}

	if v := getenv("PROXY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROXY_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid PROXY_TIMEOUT %q: must be positive", v)
		}
		cfg.Timeout = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + c.Port
}
