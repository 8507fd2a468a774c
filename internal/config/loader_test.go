package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	defaults := NewDefault()
	assert.Equal(t, defaults.HTTP.Port, cfg.HTTP.Port)
	assert.Equal(t, defaults.Server.LogLevel, cfg.Server.LogLevel)
	assert.Equal(t, defaults.Database.MaxConnections, cfg.Database.MaxConnections)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
database:
  url: "postgres://filed@dbhost:5432/filed?sslmode=disable"
  max_connections: 12
  conn_max_lifetime: 2m
server:
  log_level: debug
http:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://filed@dbhost:5432/filed?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 12, cfg.Database.MaxConnections)
	assert.Equal(t, 2*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 9000, cfg.HTTP.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BLOGSTACK_HTTP_PORT", "9090")
	t.Setenv("BLOGSTACK_SERVER_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoadConfigDatabaseURLEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ci@pooler.internal:5432/app")
	t.Setenv("DIRECT_DATABASE_URL", "postgres://ci@primary.internal:5432/app")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://ci@pooler.internal:5432/app", cfg.Database.URL)
	assert.Equal(t, "postgres://ci@primary.internal:5432/app", cfg.Database.DirectURL)
	assert.Equal(t, "postgres://ci@primary.internal:5432/app", cfg.Database.MigrationURL())
}

func TestLoadConfigInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 0\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigOrDefaultFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fallback@localhost:5432/app")

	cfg := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, "postgres://fallback@localhost:5432/app", cfg.Database.URL)
}
