// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Render   RenderConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 20s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"20s"`
}

// DataConfig selects and locates the dataset snapshot.
type DataConfig struct {
	// Source is the registered source name: parquet, csv, sqlite or postgres (default: parquet)
	Source string `env:"DATA_SOURCE" default:"parquet"`

	// Path is the snapshot file for parquet, csv and sqlite (default: dashfile.parquet)
	Path string `env:"DATA_PATH" default:"dashfile.parquet"`

	// URL is the PostgreSQL connection string for the postgres source.
	// Supports both DATA_URL and DATABASE_URL env vars.
	URL string `env:"DATA_URL" envAlt:"DATABASE_URL"`

	// Table is the table holding the snapshot for sql sources (default: dashboard)
	Table string `env:"DATA_TABLE" default:"dashboard"`

	// LoadTimeout bounds the startup load (default: 2m)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"2m"`
}

// RenderConfig bounds concurrent chart rendering.
type RenderConfig struct {
	// MaxConcurrent is the maximum number of charts drawn at once (default: 8)
	MaxConcurrent int `env:"RENDER_MAX_CONCURRENT" default:"8"`

	// MaxWait is how long a request waits for a render slot (default: 5s)
	MaxWait time.Duration `env:"RENDER_MAX_WAIT" default:"5s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ChartLimit is requests per minute for SVG chart endpoints (default: 120)
	ChartLimit int `env:"RATE_LIMIT_CHARTS" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the JSON API with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
