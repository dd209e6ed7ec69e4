// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL            string `yaml:"url"` // empty disables rate limiting
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	TurnsPerMinute int    `yaml:"turns_per_minute"`
}

// CompletionConfig points at the external completion service. The API key
// is a hard startup requirement: a process without it cannot degrade
// gracefully, it is simply misconfigured.
type CompletionConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	MaxTokens      int           `yaml:"max_tokens"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"` // guards the operator read API
}

type WorkerConfig struct {
	Count int `yaml:"count"` // background retry workers
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Completion CompletionConfig `yaml:"completion"`
	Admin      AdminConfig      `yaml:"admin"`
	Worker     WorkerConfig     `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TurnsPerMinute <= 0 {
		cfg.Redis.TurnsPerMinute = 20
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.MaxTokens <= 0 {
		cfg.Completion.MaxTokens = 512
	}
	if cfg.Completion.ConnectTimeout <= 0 {
		cfg.Completion.ConnectTimeout = 15 * time.Second
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Completion.APIKey == "" {
		return nil, errors.New("completion.api_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
