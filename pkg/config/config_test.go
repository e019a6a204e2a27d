package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	eff, err := LoadEffective("")
	require.NoError(t, err)
	assert.Equal(t, "defaults", eff.Source)
	assert.Equal(t, ":21080", eff.Addr)
	assert.Equal(t, 20, eff.Config.Limits.MaxInstances)
	assert.Equal(t, 1000, eff.Config.Limits.MaxMessages)
	assert.True(t, eff.Config.Reaper.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: 127.0.0.1
  port: 9000
limits:
  max_instances: 5
journal:
  path: /tmp/journal
`), 0o600))

	eff, err := LoadEffective(path)
	require.NoError(t, err)
	assert.Equal(t, "config", eff.Source)
	assert.Equal(t, "127.0.0.1:9000", eff.Addr)
	assert.Equal(t, 5, eff.Config.Limits.MaxInstances)
	// untouched fields keep their defaults
	assert.Equal(t, 1000, eff.Config.Limits.MaxMessages)
	assert.Equal(t, "/tmp/journal", eff.Config.Journal.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	t.Setenv("ETS_PORT", "9100")
	t.Setenv("ETS_MAX_INSTANCES", "3")

	eff, err := LoadEffective(path)
	require.NoError(t, err)
	assert.Equal(t, "env", eff.Source)
	assert.Equal(t, ":9100", eff.Addr)
	assert.Equal(t, 3, eff.Config.Limits.MaxInstances)
}

func TestLoadBadFile(t *testing.T) {
	_, err := LoadEffective(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("ETS_CONFIG", "/etc/ets.yaml")
	assert.Equal(t, "/from/flag", ResolveConfigPath("/from/flag", true))
	assert.Equal(t, "/etc/ets.yaml", ResolveConfigPath("", false))
}
