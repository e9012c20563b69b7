package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "https://encorelando.com", cfg.PublicBaseURL)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoadBadPort(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBaseURLValidation(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("PUBLIC_BASE_URL", "encorelando.com")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PUBLIC_BASE_URL", "https://encorelando.com/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://encorelando.com", cfg.PublicBaseURL, "trailing slash is trimmed")
}
