// Package config provides environment-driven configuration for the pathfinder.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
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

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config holds all application configuration values.
type Config struct {
	StoreBackend  string
	DatabaseURL   Secret
	DBMaxConns    int
	BadgerPath    string
	BadgerInMem   bool
	MongoURI      Secret
	MongoDatabase string

	Port        string
	ListenHost  string
	CORSOrigins []string
	APIKey      Secret

	LogLevel  string
	LogFormat string

	KeyField           string
	DefaultMaxDepth    int
	MaxMemoryBytes     int64
	StopAtFirstMeeting bool
	LookupSingleShot   bool
	QueryTimeout       time.Duration

	EnablePlayground bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreBackend:       envOrDefault("STORE_BACKEND", BackendPostgres),
		DatabaseURL:        Secret(envOrDefault("DATABASE_URL", "")),
		BadgerPath:         envOrDefault("BADGER_PATH", "./data/badger"),
		BadgerInMem:        envOrDefault("BADGER_IN_MEMORY", "false") == "true",
		MongoURI:           Secret(envOrDefault("MONGO_URI", "")),
		MongoDatabase:      envOrDefault("MONGO_DATABASE", "pathfinder"),
		Port:               envOrDefault("PORT", "3030"),
		ListenHost:         envOrDefault("LISTEN_HOST", "127.0.0.1"),
		APIKey:             Secret(envOrDefault("API_KEY", "")),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "text"),
		KeyField:           envOrDefault("KEY_FIELD", "_id"),
		StopAtFirstMeeting: envOrDefault("STOP_AT_FIRST_MEETING", "true") == "true",
		LookupSingleShot:   envOrDefault("LOOKUP_SINGLE_SHOT", "true") == "true",
		EnablePlayground:   envOrDefault("ENABLE_PLAYGROUND", "false") == "true",
	}

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "20"))
	if err != nil || maxConns < 2 || maxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 2 and 200")
	}
	cfg.DBMaxConns = maxConns

	depth, err := strconv.Atoi(envOrDefault("DEFAULT_MAX_DEPTH", "10"))
	if err != nil || depth < 0 || depth > 100 {
		return nil, fmt.Errorf("DEFAULT_MAX_DEPTH must be an integer between 0 and 100")
	}
	cfg.DefaultMaxDepth = depth

	mem, err := strconv.ParseInt(envOrDefault("MAX_MEMORY_BYTES", "104857600"), 10, 64)
	if err != nil || mem < 0 {
		return nil, fmt.Errorf("MAX_MEMORY_BYTES must be a non-negative integer")
	}
	cfg.MaxMemoryBytes = mem

	timeout, err := time.ParseDuration(envOrDefault("QUERY_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("QUERY_TIMEOUT must be a positive duration")
	}
	cfg.QueryTimeout = timeout

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
