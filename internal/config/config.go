// Package config provides centralized configuration management for the
// import service. Settings come from environment variables with defaults and
// are validated on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	CRM     CRMConfig
	Redis   RedisConfig
	Import  ImportConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// CORSOrigins is a comma-separated list of allowed origins for the SPA
	CORSOrigins []string `env:"SERVER_CORS_ORIGINS" default:"*"`
}

// CRMConfig holds settings for the CRM backend API.
type CRMConfig struct {
	// BaseURL is the backend API root, e.g. https://api.example.com/v1 (required)
	BaseURL string `env:"CRM_API_URL" envAlt:"CRM_BASE_URL" required:"true"`

	// APIKey is the bearer token for the backend (optional in dev)
	APIKey string `env:"CRM_API_KEY"`

	// RequestTimeout bounds each create call (default: 30s)
	RequestTimeout time.Duration `env:"CRM_REQUEST_TIMEOUT" default:"30s"`
}

// RedisConfig holds result-retention settings. Addr empty disables Redis and
// falls back to in-memory retention.
type RedisConfig struct {
	// Addr is the Redis host:port (default: empty, disabled)
	Addr string `env:"REDIS_ADDR"`

	// Password is the Redis auth password (default: empty)
	Password string `env:"REDIS_PASSWORD"`

	// DB is the Redis database number (default: 0)
	DB int `env:"REDIS_DB" default:"0"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted CSV size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// Timeout is the maximum duration for one import batch (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`

	// SessionRetention is how long finished sessions stay in memory (default: 5m)
	SessionRetention time.Duration `env:"IMPORT_SESSION_RETENTION" default:"5m"`

	// ResultTTL is how long finished results are retained in the store (default: 24h)
	ResultTTL time.Duration `env:"IMPORT_RESULT_TTL" default:"24h"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
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
	return c.Host + ":" + strconv.Itoa(c.Port)
}
