package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "client-secret")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "maryland", cfg.MongoDB)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestProductionMode(t *testing.T) {
	t.Setenv("JWT_SECRET", "client-secret")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
