package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, []string{"firebird_"}, cfg.Dependencies.FirstPartyPrefixes)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `report:
  include_code: false
  max_files: 50
registry:
  url: http://localhost:9999
  timeout: 2s
architecture:
  priority_patterns: [bloc]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Report.IncludeCode)
	assert.True(t, cfg.Report.IncludeDependencies)
	assert.Equal(t, 50, cfg.Report.MaxFiles)
	assert.Equal(t, "http://localhost:9999", cfg.Registry.URL)
	assert.Equal(t, 2*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, []string{"bloc"}, cfg.Architecture.PriorityPatterns)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KITE_REGISTRY_URL", "http://registry.test")
	t.Setenv("KITE_REPORT_MAX_FILES", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://registry.test", cfg.Registry.URL)
	assert.Equal(t, 7, cfg.Report.MaxFiles)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  max_attempts: 0\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "retry.max_attempts")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Report.MaxFiles = 42

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Report.MaxFiles)
}
