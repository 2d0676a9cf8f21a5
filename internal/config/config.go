package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	validBackends  = []string{"memory", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Preference storage
	PrefsBackend   string
	SQLiteDBPath   string
	PrefsCacheSize int
	PrefsCacheTTL  time.Duration

	// Chart
	ChartWidth int

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		PrefsBackend:   strings.ToLower(getEnv("PREFS_BACKEND", "memory")),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/growth.db"),
		PrefsCacheSize: getEnvInt("PREFS_CACHE_SIZE", 512),
		PrefsCacheTTL:  getEnvDuration("PREFS_CACHE_TTL", 10*time.Minute),

		ChartWidth: getEnvInt("CHART_WIDTH", 600),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.PrefsBackend) {
		errors = append(errors, fmt.Sprintf("invalid preferences backend '%s': must be one of %v", c.PrefsBackend, validBackends))
	}

	if c.PrefsBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.LogLevel != "" && !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.ChartWidth < 200 || c.ChartWidth > 2000 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be between 200 and 2000", c.ChartWidth))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.PrefsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid preferences cache size %d: must be at least 1", c.PrefsCacheSize))
	}
	if c.PrefsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid preferences cache TTL %v: must be at least 1 second", c.PrefsCacheTTL))
	} else if c.PrefsCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid preferences cache TTL %v: must be at most 24 hours", c.PrefsCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
