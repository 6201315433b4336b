package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Editor    EditorConfig
	Palette   PaletteConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// EditorConfig holds canvas editor timings.
type EditorConfig struct {
	PersistDelay      time.Duration `envconfig:"PERSIST_DELAY" default:"100ms"`
	TextDelay         time.Duration `envconfig:"TEXT_DELAY" default:"300ms"`
	AnimationDuration time.Duration `envconfig:"ANIMATION_DURATION" default:"500ms"`
	SpawnMargin       float64       `envconfig:"SPAWN_MARGIN" default:"50"`
	IDStrategy        string        `envconfig:"ID_STRATEGY" default:"timestamp"`
}

// PaletteConfig points at an optional palette file.
type PaletteConfig struct {
	File string `envconfig:"PALETTE_FILE"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Editor: EditorConfig{
			PersistDelay:      100 * time.Millisecond,
			TextDelay:         300 * time.Millisecond,
			AnimationDuration: 500 * time.Millisecond,
			SpawnMargin:       50,
			IDStrategy:        "timestamp",
		},
	}
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
