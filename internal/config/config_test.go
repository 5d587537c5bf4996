package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MFS_CONFIG_FILE",
		"MFS_SERVER_PORT",
		"MFS_LOGGING_LEVEL",
		"MFS_SOURCES_PORTAL_URL",
		"MFS_SOURCES_FETCH_TIMEOUT",
		"MFS_PIPELINE_ALLOW_FALLBACK",
		"MFS_PIPELINE_DROP_RATE_THRESHOLD",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Sources.FetchTimeout)
	assert.True(t, cfg.Pipeline.AllowFallback)
	assert.InDelta(t, 0.5, cfg.Pipeline.DropRateThreshold, 1e-9)
	assert.NotEmpty(t, cfg.Sources.PortalURL)
	assert.NotEmpty(t, cfg.Sources.WorkbookURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MFS_SERVER_PORT", "9090")
	t.Setenv("MFS_PIPELINE_ALLOW_FALLBACK", "false")
	t.Setenv("MFS_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Pipeline.AllowFallback)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: 7070\npipeline:\n  drop_rate_threshold: 0.25\n"), 0o644))
	t.Setenv("MFS_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.InDelta(t, 0.25, cfg.Pipeline.DropRateThreshold, 1e-9)
}

func TestLoadInvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("MFS_LOGGING_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.ReportsDir = filepath.Join(dir, "data", "reports")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.Paths.DataDir, cfg.Paths.ReportsDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
