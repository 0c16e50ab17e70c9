// Package config provides configuration loading for folio.
//
// Configuration comes from an optional YAML file overlaid with FOLIO_* environment
// variables. Every section has defaults so a bare `folio serve` works locally.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete folio configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Admin     AdminConfig     `koanf:"admin"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"http_host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"`
}

// DatabaseConfig holds SQLite store configuration.
type DatabaseConfig struct {
	Path        string        `koanf:"path"`
	BusyTimeout time.Duration `koanf:"busy_timeout"`
	SeedOnStart bool          `koanf:"seed_on_start"`
}

// AdminConfig guards the admin API.
// An unset token disables the admin routes entirely.
type AdminConfig struct {
	Token Secret `koanf:"token"`
}

// RateLimitConfig controls the per-IP limiter on public endpoints.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// LoggingConfig is the subset of logging settings exposed through config files.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled       bool     `koanf:"enabled"`
	Endpoint      string   `koanf:"endpoint"`
	Protocol      string   `koanf:"protocol"` // grpc or http/protobuf
	ServiceName   string   `koanf:"service_name"`
	Insecure      bool     `koanf:"insecure"`
	TLSSkipVerify bool     `koanf:"tls_skip_verify"`
	SamplingRate  float64  `koanf:"sampling_rate"`
	Shutdown      Duration `koanf:"shutdown_timeout"`
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{
		RateLimit: RateLimitConfig{Enabled: true},
		Database:  DatabaseConfig{SeedOnStart: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - Database path is empty
//   - Rate limit is enabled with a non-positive rate or burst
//   - Logging format is not json or console
//   - Telemetry is enabled without endpoint or service name
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("ratelimit.rps must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("ratelimit.burst must be >= 1, got %d", c.RateLimit.Burst)
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.ServiceName == "" {
			return errors.New("service name required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol)
		}
		if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
			return fmt.Errorf("telemetry.sampling_rate must be between 0 and 1, got %f", c.Telemetry.SamplingRate)
		}
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.BodyLimit == "" {
		cfg.Server.BodyLimit = "64K"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "~/.config/folio/folio.db"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}

	// One request per second sustained, bursts of ten.
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = 1
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "folio"
	}
	if cfg.Telemetry.SamplingRate == 0 {
		cfg.Telemetry.SamplingRate = 1.0
	}
	if cfg.Telemetry.Shutdown == 0 {
		cfg.Telemetry.Shutdown = Duration(5 * time.Second)
	}
}
