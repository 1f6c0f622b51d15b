package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape: the candidate URL list plus
// the three timing/sizing knobs.
type Config struct {
	URLList          []string `yaml:"url_list"`
	ConnectTimeoutMs int      `yaml:"connect_timeout_ms"`
	RequestTimeoutMs int      `yaml:"request_timeout_ms"`
	RecvBufferSize   int      `yaml:"recv_buffer_size"`
	LogLevel         string   `yaml:"log_level"`
}

// Default returns the documented defaults with an empty URL list.
func Default() Config {
	return Config{
		ConnectTimeoutMs: 3000,
		RequestTimeoutMs: 3000,
		RecvBufferSize:   65535,
		LogLevel:         "info",
	}
}

// Load reads and validates a yaml config file at path. Missing optional
// fields fall back to Default's values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	if len(c.URLList) == 0 {
		return fmt.Errorf("url_list must contain at least one rtsp:// URL")
	}
	if c.ConnectTimeoutMs <= 0 {
		return fmt.Errorf("connect_timeout_ms must be positive, got %d", c.ConnectTimeoutMs)
	}
	if c.RequestTimeoutMs <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive, got %d", c.RequestTimeoutMs)
	}
	if c.RecvBufferSize <= 0 {
		return fmt.Errorf("recv_buffer_size must be positive, got %d", c.RecvBufferSize)
	}
	return nil
}

func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}
