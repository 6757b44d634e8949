// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Ledger engine
	Epsilon float64
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/homeledger.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),
		Epsilon:       getEnvFloat("LEDGER_EPSILON", 0.01),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET must be set")
	} else if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}

	if c.Epsilon <= 0 || c.Epsilon >= 1 {
		problems = append(problems, fmt.Sprintf("invalid epsilon %v: must be in (0, 1)", c.Epsilon))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
