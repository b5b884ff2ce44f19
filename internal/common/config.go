package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Loader   LoaderConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// LoaderConfig holds the polling pipeline configuration.
type LoaderConfig struct {
	WorkingDir   string        // where the lab instruments deposit archives
	OutputDir    string        // per-report CSV output
	SettingsPath string        // JSON settings document (separators, vocabulary, decode table)
	MaxRuntime   time.Duration // total duration budget of one run
	PollInterval time.Duration // sleep between polls
	DoNotUpdate  bool          // dry run: never write terminal outcomes
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Loader: LoaderConfig{
			WorkingDir:   getEnv("GENOLOAD_WORKING_DIR", "./incoming"),
			OutputDir:    getEnv("GENOLOAD_OUTPUT_DIR", "./output"),
			SettingsPath: getEnv("GENOLOAD_SETTINGS", "./settings.json"),
			MaxRuntime:   getEnvAsDuration("GENOLOAD_MAX_RUNTIME", 50*time.Minute),
			PollInterval: getEnvAsDuration("GENOLOAD_POLL_INTERVAL", time.Second),
			DoNotUpdate:  getEnvAsBool("GENOLOAD_DRY_RUN", false),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Loader.WorkingDir == "" {
		return NewAppError("CONFIG_ERROR", "GENOLOAD_WORKING_DIR is required", ErrInvalidInput)
	}
	if c.Loader.PollInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "GENOLOAD_POLL_INTERVAL must be positive", ErrInvalidInput)
	}
	return nil
}
