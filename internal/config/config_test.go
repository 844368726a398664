package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/template-manager/internal/config"
)

const validKey = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("PASETO_KEY", validKey)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "dev", cfg.Server.Env)
		assert.True(t, cfg.Server.IsDevelopment())
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
		assert.Equal(t, "template-manager", cfg.Mongo.Database)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
		assert.Equal(t, 10, cfg.RateLimit.IPLimit)
		assert.Equal(t, 15*time.Minute, cfg.RateLimit.IPWindow)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("PASETO_KEY", validKey)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("APP_ENV", "prod")
		t.Setenv("SESSION_TOKEN_TTL", "3600")
		t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.False(t, cfg.Server.IsDevelopment())
		assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
	})

	t.Run("rejects a missing token key", func(t *testing.T) {
		t.Setenv("PASETO_KEY", "")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PASETO_KEY")
	})

	t.Run("rejects a short token key", func(t *testing.T) {
		t.Setenv("PASETO_KEY", "short")

		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestRedisAddress(t *testing.T) {
	cfg := config.RedisConfig{Host: "redis.internal", Port: "6380"}
	assert.Equal(t, "redis.internal:6380", cfg.Address())
}
