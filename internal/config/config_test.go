package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stackpad", cfg.Name)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "https://swapi.dev/api", cfg.SWAPI.BaseURL)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9999"
  dev_mode: true
store:
  backend: memory
swapi:
  timeout: 2s
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.GetSWAPITimeout())
	// Untouched sections keep defaults.
	assert.Equal(t, "data/stackpad.db", cfg.Store.DatabasePath)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STACKPAD_ADDR", ":7070")
	t.Setenv("STACKPAD_STORE", "memory")
	t.Setenv("STACKPAD_DB", "/tmp/alt.db")
	t.Setenv("SWAPI_BASE_URL", "http://localhost:9000/api")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "/tmp/alt.db", cfg.Store.DatabasePath)
	assert.Equal(t, "http://localhost:9000/api", cfg.SWAPI.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":8181"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", loaded.Server.Addr)
}

func TestDurationAccessorsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SWAPI.Timeout = "bogus"
	cfg.Server.ShutdownTimeout = ""
	cfg.Bootstrap.StepTimeout = "nope"

	assert.Equal(t, 30*time.Second, cfg.GetSWAPITimeout())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetStepTimeout())
}
