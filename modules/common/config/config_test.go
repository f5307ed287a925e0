package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("TRYON_DOMAIN", "")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiVisionModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiImageModel)
	assert.Equal(t, "hairstyle", cfg.TryOnDomain)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.RedisUseTLS)
}

func TestLoadConfigRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadConfigRejectsUnknownDomain(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("TRYON_DOMAIN", "makeup")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRYON_DOMAIN")
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "redis.internal", RedisPort: "6380"}
	assert.Equal(t, "redis.internal:6380", cfg.GetRedisAddr())
}

func TestRedisTLSFlagParsing(t *testing.T) {
	for _, v := range []string{"true", "1"} {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("TRYON_DOMAIN", "clothing")
		t.Setenv("REDIS_USE_TLS", v)

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.RedisUseTLS, "REDIS_USE_TLS=%s", v)
	}
}
