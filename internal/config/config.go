// Package config provides environment-driven configuration for the college
// directory server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL Secret
	Port        string
	ListenHost  string
	MetricsPort string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	// AdminAPIKey, when set, is registered as the "bootstrap" admin key on startup.
	AdminAPIKey Secret

	DBMaxConns      int
	DefaultPageSize int
	MaxPageSize     int
	MaxUploadBytes  int64
	WSMaxClients    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3001"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort: envOrDefault("METRICS_PORT", "9091"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		AdminAPIKey: Secret(envOrDefault("ADMIN_API_KEY", "")),
	}

	ints := []struct {
		key      string
		fallback int
		min, max int
		dst      *int
	}{
		{"DB_MAX_CONNS", 10, 2, 200, &cfg.DBMaxConns},
		{"DEFAULT_PAGE_SIZE", 20, 1, 1000, &cfg.DefaultPageSize},
		{"MAX_PAGE_SIZE", 100, 1, 1000, &cfg.MaxPageSize},
		{"WS_MAX_CLIENTS", 100, 1, 10000, &cfg.WSMaxClients},
	}

	for _, v := range ints {
		n, err := envInt(v.key, v.fallback, v.min, v.max)
		if err != nil {
			return nil, err
		}

		*v.dst = n
	}

	maxUploadMB, err := envInt("MAX_UPLOAD_MB", 10, 1, 100)
	if err != nil {
		return nil, err
	}

	cfg.MaxUploadBytes = int64(maxUploadMB) << 20

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the API listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback, lo, hi int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return n, nil
}
