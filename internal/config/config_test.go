package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rwi-server.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config is written on first run")

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "crlf", cfg.Format.LineEnding)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
	assert.Equal(t, filepath.Join(dir, "data", "index"), cfg.Storage.IndexDirectory)
	assert.Equal(t, "0.0.0.0:8090", cfg.GetServerAddr())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `server:
  port: 9100
format:
  line_ending: lf
  default_material: 3
session:
  max_sessions: 4
storage:
  data_directory: /var/lib/rwi
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "lf", cfg.Format.LineEnding)
	assert.Equal(t, 3, cfg.Format.DefaultMaterial)
	assert.Equal(t, 4, cfg.Session.MaxSessions)
	assert.Equal(t, "/var/lib/rwi", cfg.GetDataDir(), "absolute paths are kept")
	assert.Equal(t, 30, cfg.Session.SessionTimeoutMinutes, "unset keys keep defaults")
	assert.Equal(t, "512MB", cfg.Index.DuckDBMemoryLimit)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [unclosed"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad line ending", "format:\n  line_ending: cr\n"},
		{"negative material", "format:\n  default_material: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9200")
	t.Setenv("RWI_LINE_ENDING", "lf")
	t.Setenv("DATA_DIR", "state")

	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "cfg.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "lf", cfg.Format.LineEnding)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.GetDataDir())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = 8123
	cfg.Advanced.LogLevel = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Server.Port)
	assert.Equal(t, log.DEBUG, loaded.LogLevel())
}

func TestLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for level, want := range map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		"warning": log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
		"chatty":  log.INFO,
	} {
		cfg.Advanced.LogLevel = level
		assert.Equal(t, want, cfg.LogLevel(), level)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "cfg.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.GetDataDir(), cfg.GetUploadDir(), cfg.Storage.IndexDirectory} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
