package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "http://localhost:5000/api"
push:
  url: "ws://localhost:5000/socket"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, 25*time.Second, cfg.PingInterval())
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval())
	assert.Equal(t, ".tableside/token", cfg.Session.TokenFile)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "http://api.internal/api"
  timeout_seconds: 5
push:
  url: "ws://api.internal/socket"
  ping_interval_seconds: 10
refresh:
  interval_seconds: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, 10*time.Second, cfg.PingInterval())
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
}

func TestLoadMissingURLs(t *testing.T) {
	path := writeConfig(t, `
api:
  timeout_seconds: 5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TABLESIDE_API_URL", "http://override/api")
	t.Setenv("TABLESIDE_PUSH_URL", "ws://override/socket")

	path := writeConfig(t, `
api:
  base_url: "http://file/api"
push:
  url: "ws://file/socket"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override/api", cfg.API.BaseURL)
	assert.Equal(t, "ws://override/socket", cfg.Push.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
