package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "tracker-api")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "9095", cfg.MetricsPort)
	assert.Equal(t, "bets_mutations", cfg.TopicBetMutations)
	assert.Equal(t, 80.78, cfg.DefaultRate)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "tracker-api")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("STORE", "Memory")
	t.Setenv("DEFAULT_RATE", "92.5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 92.5, cfg.DefaultRate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("SERVICE_NAME", "tracker-api")
	t.Setenv("ADMIN_PASSWORD", "")
	assert.Error(t, Load().Validate())

	t.Setenv("ADMIN_PASSWORD", "x")
	t.Setenv("STORE", "sqlite")
	assert.Error(t, Load().Validate())

	t.Setenv("SERVICE_NAME", "tracker-viewer")
	t.Setenv("STORE", "memory")
	t.Setenv("ADMIN_PASSWORD", "")
	assert.NoError(t, Load().Validate())
}
