package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Navigation NavigationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
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

// NavigationConfig holds the access boundary and scanner settings.
type NavigationConfig struct {
	// DefaultDirectory is handed to clients as the directory to open first.
	DefaultDirectory string `envconfig:"LOG_VIEWER_DEFAULT_DIRECTORY"`
	// Roots is used when no policy file is given.
	Roots []string `envconfig:"LOG_VIEWER_ROOTS" default:"/var/log"`
	// PolicyFile points to a YAML policy; it takes precedence over Roots.
	PolicyFile string `envconfig:"LOG_VIEWER_POLICY_FILE"`
	// ScanWorkers bounds concurrent content scans; 0 uses GOMAXPROCS.
	ScanWorkers int `envconfig:"LOG_VIEWER_SCAN_WORKERS" default:"0"`
	// ScanBuffer is the scanner read size in bytes.
	ScanBuffer int `envconfig:"LOG_VIEWER_SCAN_BUFFER" default:"65536"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
			Port: "8000",
			Host: "0.0.0.0",
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
		Navigation: NavigationConfig{
			Roots:      []string{"/var/log"},
			ScanBuffer: 64 * 1024,
		},
	}
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Navigation.ScanWorkers < 0 {
		return fmt.Errorf("LOG_VIEWER_SCAN_WORKERS must not be negative, got %d", c.Navigation.ScanWorkers)
	}
	if c.Navigation.ScanBuffer < 0 {
		return fmt.Errorf("LOG_VIEWER_SCAN_BUFFER must not be negative, got %d", c.Navigation.ScanBuffer)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	return nil
}
