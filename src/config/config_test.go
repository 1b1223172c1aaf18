package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 4, cfg.Build.MaxConcurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.Len(t, cfg.Logging.Sinks, 1)
	assert.Equal(t, "console", cfg.Logging.Sinks[0].Type)
}

func TestLoad_FromFile(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ConfigDir)
	require.NoError(t, os.MkdirAll(configDir, 0755))

	content := `
version: 1
build:
  max_concurrency: 8
  cache_dir: .cache/wavebuild
logging:
  level: debug
  sinks:
    - type: file
      filename: build.log
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Build.MaxConcurrency)
	assert.Equal(t, ".cache/wavebuild", cfg.Build.CacheDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Malformed(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ConfigDir)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("{{{"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	root := t.TempDir()

	cfg := Default()
	cfg.Build.MaxConcurrency = 2
	require.NoError(t, Save(root, cfg))

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Build.MaxConcurrency)
}
