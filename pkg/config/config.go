// Package config loads the service configuration from environment
// variables with working defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	LogLevel           string
	LogFormat          string
	Port               string
	CatalogDBPath      string
	FileStorePath      string
	RedisURL           string // empty disables the file cache
	FileCacheTTL       time.Duration
	ProfileCron        string // empty disables the profile scheduler
	AnalysisConfigPath string
	RequestTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		Port:               getEnv("PORT", "8080"),
		CatalogDBPath:      getEnv("CATALOG_DB_PATH", "./data/catalog.db"),
		FileStorePath:      getEnv("FILE_STORE_PATH", "./data/files"),
		RedisURL:           getEnv("REDIS_URL", ""),
		FileCacheTTL:       getEnvAsDuration("FILE_CACHE_TTL", 10*time.Minute),
		ProfileCron:        getEnv("PROFILE_CRON", "@hourly"),
		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG_PATH", ""),
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a duration in
// seconds (or a Go duration string) or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	return defaultValue
}
