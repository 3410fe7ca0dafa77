package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "VERSION", "LOG_LEVEL",
		"HTTP_PORT", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "CORS_ALLOW_ORIGINS",
		"STORAGE_DRIVER", "PG_DSN", "SQLITE_PATH", "AUTO_MIGRATE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_URL", "REDIS_DEFAULT_TTL",
		"AUTH_ENABLED", "SECRET_KEY", "AUTH_TOKEN_TTL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadSQLiteDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "./data/test.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "./data/test.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout.Duration())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PG_DSN")

	t.Setenv("PG_DSN", "postgres://localhost/meals?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestLoadRedisURLOverridesAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_URL", "redis://default:pw@redis.internal:35459/3")
	t.Setenv("REDIS_DEFAULT_TTL", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis.internal:35459", cfg.Redis.Addr)
	assert.Equal(t, "pw", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.DefaultTTL.Duration())
}

func TestLoadAuthSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("AUTH_ENABLED", "true")

	t.Run("default secret allowed in dev", func(t *testing.T) {
		t.Setenv("APP_ENV", "dev")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultSecretKey, cfg.Auth.SecretKey)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL.Duration())
	})

	t.Run("default secret rejected in prod", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET_KEY")
	})

	t.Run("custom secret in prod", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		t.Setenv("SECRET_KEY", "s3cr3t")
		_, err := Load()
		require.NoError(t, err)
	})
}
