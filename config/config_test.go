package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "meals")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "mealplanner")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBPools.AppPool.Host)
	assert.Equal(t, 5432, cfg.DBPools.AppPool.Port)
	assert.Equal(t, 10, cfg.DBPools.AppPool.MaxSize)
	assert.Equal(t, 5, cfg.DBPools.SeedPool.MaxSize)

	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenDuration)

	assert.Equal(t, 5, cfg.RateLimit.Login.Quota)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, 3, cfg.RateLimit.Signup.Quota)
	assert.Equal(t, time.Hour, cfg.RateLimit.Signup.Window)

	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	// None of the required variables are set; every one must be reported.
	required := []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET"}
	for _, key := range required {
		// t.Setenv records the original value for cleanup; Unsetenv then makes
		// the key truly absent for the duration of the test.
		t.Setenv(key, "placeholder")
		os.Unsetenv(key)
	}

	_, err := LoadConfig()
	require.Error(t, err)
	for _, key := range required {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "fifteen minutes")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TOKEN_DURATION")
}

func TestLoadConfigClampsPoolSizes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_APP_POOL_SIZE", "1000")

	// Clamping is reported as a configuration error rather than silently applied.
	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DB_APP_POOL_SIZE"))
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_LOGIN_QUOTA", "10")
	t.Setenv("RATE_LIMIT_LOGIN_WINDOW", "30m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RateLimit.Login.Quota)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "9090", cfg.Server.Port)
}
