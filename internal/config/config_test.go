package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "spdxtv.yaml", `
log:
  level: debug
  pretty: true
store:
  path: /var/lib/spdxtv/store.journal
server:
  addr: 127.0.0.1:9000
  shutdown_timeout: 3s
s3:
  endpoint: http://localhost:9000
  access_key: minio
  secret_key: minio123
  path_style: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "/var/lib/spdxtv/store.journal", cfg.Store.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "spdxtv.yaml", "log:\n  level: debug\n")
	t.Setenv("SPDXTV_LOG_LEVEL", "warn")
	t.Setenv("SPDXTV_STORE_PATH", "env.journal")
	t.Setenv("SPDXTV_SERVER_MAX_BODY_BYTES", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "env.journal", cfg.Store.Path)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "SPDXTV_SERVER_ADDR=:7070\n")
	// godotenv never overrides variables that are already set
	t.Setenv("SPDXTV_SERVER_ADDR", "")
	os.Unsetenv("SPDXTV_SERVER_ADDR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "log: [\n")
	_, err = Load(bad)
	assert.Error(t, err)

	level := writeFile(t, dir, "level.yaml", "log:\n  level: loud\n")
	_, err = Load(level)
	assert.ErrorIs(t, err, ErrInvalid)

	t.Setenv("SPDXTV_LOG_PRETTY", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.S3.AccessKey = "only-half"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.S3.Endpoint = "not a url"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
