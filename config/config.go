// Package config provides configuration management for the meal planner API.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// All errors encountered while loading are collected and reported together, so an
// operator fixing a broken deployment sees every problem at once instead of one per restart.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabasePools holds configuration for the different database connection pools.
type DatabasePools struct {
	// AppPool serves regular request traffic.
	AppPool *PoolConfig
	// SeedPool is a smaller pool reserved for migrations and reference-data
	// imports (recipes, intolerances), so bulk work never starves request queries.
	SeedPool *PoolConfig
}

// PoolConfig represents configuration for a single database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // Secret key for signing JWTs
	AccessTokenDuration  time.Duration // Duration for access tokens
	RefreshTokenDuration time.Duration // Duration for refresh tokens
}

// RatePolicyConfig describes one rate-limited route class: how many requests
// are admitted per window, how long the window is, and the message returned
// once the quota is exhausted.
type RatePolicyConfig struct {
	Quota   int
	Window  time.Duration
	Message string
}

// RateLimitConfig holds the per-route-class rate-limit policies plus the
// sweep interval for the in-memory window store.
type RateLimitConfig struct {
	Login         RatePolicyConfig
	Signup        RatePolicyConfig
	SweepInterval time.Duration
}

// RedisConfig holds the optional Redis connection settings. When URL is empty
// the rate limiter falls back to its in-memory window store.
type RedisConfig struct {
	URL string
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string // Port for the HTTP server
	// MigrationsPath points at the SQL migration files; empty disables migrations.
	MigrationsPath string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DBPools   *DatabasePools
	Auth      *AuthConfig
	RateLimit *RateLimitConfig
	Redis     *RedisConfig
	Server    *ServerConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
// This promotes a "fail fast" approach for critical missing configurations.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return "" // Return empty string, error is collected
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue // Return default, error is collected
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as time.Duration.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue // Return default, error is collected
	}
	return valueDuration
}

// parseAndValidatePoolSize converts a string value to an integer, validates and clamps it.
// Appends an error to the errors slice if parsing or validation fails.
func parseAndValidatePoolSize(valueStr string, varName string, errors *[]string) int {
	if valueStr == "" { // Should be caught by getRequiredEnv if it's a required var
		*errors = append(*errors, fmt.Sprintf("missing value for pool size: %s", varName))
		return 5
	}
	size, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid pool size for %s: expected integer, got '%s': %v", varName, valueStr, err))
		return 5 // Default to min clamp value on error
	}

	// Clamp the pool size between 5 and 100
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5, clamping to 5", varName, size))
		size = 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		size = 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	// `errors` slice collects all validation/parsing errors during config loading.
	var errors []string

	// Database configuration
	dbUser := getRequiredEnv("DB_USER", &errors)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errors)
	dbName := getRequiredEnv("DB_NAME", &errors)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errors)

	dbAppPoolSizeStr := getOptionalEnv("DB_APP_POOL_SIZE", "10")
	dbSeedPoolSizeStr := getOptionalEnv("DB_SEED_POOL_SIZE", "5")
	appPoolSize := parseAndValidatePoolSize(dbAppPoolSizeStr, "DB_APP_POOL_SIZE", &errors)
	seedPoolSize := parseAndValidatePoolSize(dbSeedPoolSizeStr, "DB_SEED_POOL_SIZE", &errors)

	dbPools := &DatabasePools{
		AppPool: &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			MaxSize:  appPoolSize,
		},
		SeedPool: &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			MaxSize:  seedPoolSize,
		},
	}

	// Auth configuration
	jwtSecret := getRequiredEnv("JWT_SECRET", &errors)
	accessTokenDuration := getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errors)
	refreshTokenDuration := getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errors) // 7 days

	authConfig := &AuthConfig{
		JWTSecret:            jwtSecret,
		AccessTokenDuration:  accessTokenDuration,
		RefreshTokenDuration: refreshTokenDuration,
	}

	// Rate-limit configuration. Defaults mirror the documented API contract:
	// 5 login attempts per 15 minutes, 3 signups per hour.
	rateLimitConfig := &RateLimitConfig{
		Login: RatePolicyConfig{
			Quota:   getOptionalEnvInt("RATE_LIMIT_LOGIN_QUOTA", 5, &errors),
			Window:  getOptionalEnvDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute, &errors),
			Message: "Too many login attempts, retry in 15 minutes",
		},
		Signup: RatePolicyConfig{
			Quota:   getOptionalEnvInt("RATE_LIMIT_SIGNUP_QUOTA", 3, &errors),
			Window:  getOptionalEnvDuration("RATE_LIMIT_SIGNUP_WINDOW", time.Hour, &errors),
			Message: "Too many signup attempts, retry in 1 hour",
		},
		SweepInterval: getOptionalEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute, &errors),
	}

	// Redis is optional; when unset the limiter keeps its windows in process memory.
	redisConfig := &RedisConfig{
		URL: getOptionalEnv("REDIS_URL", ""),
	}

	// Server configuration
	serverConfig := &ServerConfig{
		// Note: the port is kept as a string because it's used directly in the listen address (e.g., ":8080").
		Port:           getOptionalEnv("PORT", "8080"),
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
	}

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DBPools:   dbPools,
		Auth:      authConfig,
		RateLimit: rateLimitConfig,
		Redis:     redisConfig,
		Server:    serverConfig,
	}, nil
}
