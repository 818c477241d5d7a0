package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5240", cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 60*time.Second, cfg.Workflow.DialTimeout)
	assert.Equal(t, "local", cfg.Secrets.Backend)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regiond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: file:test.db
workflow:
  enabled: true
  dial_timeout: 5s
`), 0o600))
	t.Setenv("REGIOND_DATABASE_DSN", "file:other.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:other.db", cfg.Database.DSN)
	assert.True(t, cfg.Workflow.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Workflow.DialTimeout)
}

func TestSecretsKeyMustBe32Bytes(t *testing.T) {
	_, err := SecretsConfig{Key: "abcd"}.KeyBytes()
	assert.Error(t, err)

	key, err := SecretsConfig{Key: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"}.KeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
