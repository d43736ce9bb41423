package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.DefaultNumQuestions)
	assert.Equal(t, 2, cfg.FollowUpLimit)
	assert.Equal(t, 1500, cfg.ContextTokenBudget)
	assert.Equal(t, 45*time.Second, cfg.GenerateTimeout)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9999")
	t.Setenv("FOLLOW_UP_LIMIT", "3")
	t.Setenv("REPLY_CACHE_TTL", "30m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 3, cfg.FollowUpLimit)
	assert.Equal(t, 30*time.Minute, cfg.ReplyCacheTTL)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := config.Load()
	require.Error(t, err)
}
