package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, DefaultAccessTokenTTL, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, DefaultRefreshTokenTTL, cfg.JWT.RefreshTokenTTL)
	assert.Empty(t, cfg.JWT.SecretKey)
	assert.Equal(t, 20, cfg.RateLimit.AuthRequestsPerMinute)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yml := `
server:
  port: "9090"
database:
  driver: Memory
jwt:
  secret_key: from-file
  access_token_ttl: 30s
  refresh_token_ttl: 48h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))
	t.Setenv("JWT_SECRET_KEY", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.SecretKey)
	assert.Equal(t, 30*time.Second, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "from-env", AppConfig.JWT.SecretKey)
}

func TestLoadConfig_NonPositiveTTLFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "0s")
	t.Setenv("JWT_REFRESH_TOKEN_TTL", "-1h")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultAccessTokenTTL, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, DefaultRefreshTokenTTL, cfg.JWT.RefreshTokenTTL)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_ENABLED=true\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REDIS_ENABLED") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled)
}
