package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "real-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.ModelName)
	assert.Equal(t, 2000, cfg.ModelMaxTokens)
	assert.InDelta(t, 0.4, cfg.ModelTemperature, 0.001)
	assert.Equal(t, 3, cfg.MaxSearchResults)
	assert.Equal(t, "15m", cfg.ConversationTTL)
	assert.Equal(t, 5, cfg.ToolMaxCalls)
	assert.Equal(t, 50, cfg.MaxConversationTurns)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, "GraphChat", cfg.AssistantName)
	assert.True(t, cfg.SaveVisualizations)
	assert.Equal(t, []string{"png", "mermaid"}, cfg.VizFormats)

	require.NoError(t, cfg.Validate())
}

func TestLoadRequiresAPIKey(t *testing.T) {
	// t.Setenv registers the restore; the variable must be absent, not blank,
	// for the required check to trip.
	t.Setenv("GEMINI_API_KEY", "placeholder")
	os.Unsetenv("GEMINI_API_KEY")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRejectsPlaceholderKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_API_KEY", "your-gemini-api-key-here")

	cfg, err := Load()
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestOptionalFeaturesToggle(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.SearchEnabled())
	assert.False(t, cfg.TracingEnabled())

	t.Setenv("TAVILY_API_KEY", "tvly-key")
	t.Setenv("LANGSMITH_API_KEY", "ls-key")

	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.SearchEnabled())
	assert.True(t, cfg.TracingEnabled())
	assert.Equal(t, "graphchat", cfg.LangSmithProject)
}

func TestRedisOptional(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Redis.Enabled())

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled())
}

func TestEnvParsing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Env().IsProduction())
}
