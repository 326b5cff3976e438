package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

func (c *Config) validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	return c.validateSearch()
}

func (c *Config) validateStore() error {
	switch c.StoreBackend {
	case BackendPostgres:
		return c.validateDatabase()
	case BackendBadger:
		if !c.BadgerInMem && c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
	case BackendMongo:
		if c.MongoURI.Value() == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND is mongo")
		}

		u, err := url.Parse(c.MongoURI.Value())
		if err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			return fmt.Errorf("MONGO_URI scheme must be mongodb:// or mongodb+srv://")
		}

		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DATABASE is required when STORE_BACKEND is mongo")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be postgres, badger, mongo or memory, got %q", c.StoreBackend)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Loopback for local deployments, 0.0.0.0/:: for containers where the
	// network boundary is enforced externally.
	validHosts := map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   true,
		"::":        true,
	}
	if !validHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	// An exposed listener without a key would serve anyone on the network.
	if (c.ListenHost == "0.0.0.0" || c.ListenHost == "::") && c.APIKey.Value() == "" {
		return fmt.Errorf("API_KEY is required when LISTEN_HOST is not a loopback address")
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got %q", c.LogFormat)
	}

	return nil
}

func (c *Config) validateSearch() error {
	if _, ok := models.FieldPath(c.KeyField); !ok || len(c.KeyField) > models.MaxFieldLength {
		return fmt.Errorf("KEY_FIELD must be a field path, got %q", c.KeyField)
	}

	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()

	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
