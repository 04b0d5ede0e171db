package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite3")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, "/uploads", cfg.UploadURLPrefix)
	assert.True(t, cfg.Cache.Methods["GET"])
	assert.Equal(t, 60, cfg.RateLimit.Capacity)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_USER", "venue")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("API_REQUIRE_AUTH", "true")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "3s")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 2*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.RefillInterval)
	assert.GreaterOrEqual(t, cfg.RateLimit.TTL, 15*time.Second)
	assert.True(t, cfg.Cache.Methods["HEAD"])
	assert.Equal(t, "cache:6380", cfg.Redis.Address())
}

func TestLoadFromMissingRequired(t *testing.T) {
	t.Run("jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("DB_DRIVER", "sqlite3")
		_, err := LoadFrom(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("mysql user", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "mysql")
		t.Setenv("DB_USER", "")
		_, err := LoadFrom(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_USER")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := LoadFrom(viper.New())
		require.Error(t, err)
	})
}
