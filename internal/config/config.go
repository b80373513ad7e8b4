package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Push    PushConfig    `yaml:"push"`
	Session SessionConfig `yaml:"session"`
	Refresh RefreshConfig `yaml:"refresh"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PushConfig struct {
	URL                 string `yaml:"url"`
	PingIntervalSeconds int    `yaml:"ping_interval_seconds"`
}

type SessionConfig struct {
	TokenFile string `yaml:"token_file"`
}

type RefreshConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}
	if cfg.Push.URL == "" {
		return nil, fmt.Errorf("push.url is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 15
	}
	if c.Push.PingIntervalSeconds == 0 {
		c.Push.PingIntervalSeconds = 25
	}
	if c.Session.TokenFile == "" {
		c.Session.TokenFile = ".tableside/token"
	}
	if c.Refresh.IntervalSeconds == 0 {
		c.Refresh.IntervalSeconds = 30
	}
}

// Environment overrides win over the file, matching how the deployment
// scripts configure per-terminal endpoints.
func (c *Config) applyEnv() {
	if v := os.Getenv("TABLESIDE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TABLESIDE_PUSH_URL"); v != "" {
		c.Push.URL = v
	}
	if v := os.Getenv("TABLESIDE_TOKEN_FILE"); v != "" {
		c.Session.TokenFile = v
	}
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Push.PingIntervalSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}
