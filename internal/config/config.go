package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Cache    CacheConfig
	Log      LogConfig

	// Seed loads the bundled catalogue into an empty store.
	Seed bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	SiteURL         string // absolute base for links in feeds and sitemaps
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the content backend. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL            string
	ConnectRetries uint64
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
}

// SessionConfig holds cookie and slot settings
type SessionConfig struct {
	Secret     string
	CookieName string
	// Dir is where the CLI keeps its durable session slot.
	Dir string
}

// CacheConfig sizes the article detail cache
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			SiteURL:         strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			ConnectRetries: uint64(getIntEnv("DB_CONNECT_RETRIES", 5)),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "secret_key_change_me"),
			CookieName: getEnv("SESSION_COOKIE", "inkwell_session"),
			Dir:        getEnv("SESSION_DIR", defaultSessionDir()),
		},
		Cache: CacheConfig{
			Size: getIntEnv("CACHE_SIZE", 500),
			TTL:  getDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("ENV", "production") == "development",
		},
		Seed: getBoolEnv("SEED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Session.Secret) < 8 {
		return fmt.Errorf("SESSION_SECRET must be at least 8 characters")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.Cache.Size)
	}
	return nil
}

// UsesDatabase reports whether the SQL backend is configured.
func (c *Config) UsesDatabase() bool {
	return c.Database.URL != ""
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/inkwell/session"
	}
	return ".inkwell/session"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
