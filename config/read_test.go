package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
database:
  host: db.internal
  dbname: medchart
server:
  port: 9000
workspace:
  registry_size: 32
  fetch_timeout_seconds: 3
events:
  nats_url: nats://localhost:4222
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Workspace.RegistrySize)
	assert.Equal(t, 3, cfg.Workspace.FetchTimeoutSeconds)
	assert.Equal(t, 4, cfg.Workspace.WarmConcurrency)
	assert.Equal(t, "US", cfg.Workspace.PhoneRegion)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NatsURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEDCHART_WORKSPACE_PHONE_REGION", "GB")
	t.Setenv("MEDCHART_DATABASE_HOST", "override")

	cfg, err := ReadConfig(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "GB", cfg.Workspace.PhoneRegion)
	assert.Equal(t, "override", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 70000
	cfg.Authentication.EncryptionKey = "abc"
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "database.host")
	assert.ErrorContains(t, err, "server.port")
	assert.ErrorContains(t, err, "encryption_key")
	assert.ErrorContains(t, err, "logging.level")
}

func TestMissingFileWithoutEnv(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	assert.Error(t, err)
}
