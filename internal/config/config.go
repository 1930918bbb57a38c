// Package config loads service configuration from the environment.
// Values are injected at construction time; nothing reads the environment
// after startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the service.
type Config struct {
	ServerPort   string
	AWSRegion    string
	TableName    string
	EventBusName string
	Indexes      IndexNames
	Retry        RetryConfig
}

// IndexNames names the secondary indexes of the entity table.
type IndexNames struct {
	EntityIndex     string // all sub-entities of a school
	YearIndex       string // periods and holidays of one academic year
	SchoolCodeIndex string // school-code uniqueness lookups
}

// RetryConfig configures the retry/backoff executor used by mutating
// operations.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// Load reads configuration from the environment, applying development
// defaults for anything unset.
func Load() Config {
	return Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		TableName:    getEnv("TABLE_NAME", "schoolhub-dev"),
		EventBusName: getEnv("EVENT_BUS_NAME", "schoolhub-events-dev"),
		Indexes: IndexNames{
			EntityIndex:     getEnv("ENTITY_INDEX_NAME", "GSI1"),
			YearIndex:       getEnv("YEAR_INDEX_NAME", "GSI2"),
			SchoolCodeIndex: getEnv("SCHOOL_CODE_INDEX_NAME", "GSI3"),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvDuration("RETRY_BASE_DELAY_MS", 100) * time.Millisecond,
			MaxDelay:    getEnvDuration("RETRY_MAX_DELAY_MS", 2000) * time.Millisecond,
			Multiplier:  2.0,
		},
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback int64) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
