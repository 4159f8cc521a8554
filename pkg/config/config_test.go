package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "/packages", cfg.PackagesDir)
	assert.True(t, cfg.UseBubblewrap)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.yaml")
	data := []byte("port: 9000\npackages_dir: /opt/runtimes\nmax_output_size: 4096\nuse_bubblewrap: false\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/opt/runtimes", cfg.PackagesDir)
	assert.Equal(t, 4096, cfg.MaxOutputSize)
	assert.False(t, cfg.UseBubblewrap)
	// Untouched fields keep defaults
	assert.Equal(t, 30.0, cfg.DefaultTimeLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/kiln.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KILN_PORT", "8081")
	t.Setenv("KILN_PACKAGES_DIR", "/srv/packages")
	t.Setenv("KILN_USE_BUBBLEWRAP", "false")
	t.Setenv("KILN_DEBUG", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "/srv/packages", cfg.PackagesDir)
	assert.False(t, cfg.UseBubblewrap)
	assert.True(t, cfg.Debug)
}

func TestValidateRejectsInconsistentLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"default time above max", func(c *Config) { c.DefaultTimeLimit = 500 }},
		{"default memory above max", func(c *Config) { c.DefaultMemoryLimit = 4096 }},
		{"tiny max memory", func(c *Config) { c.MaxMemoryLimit = 1 }},
		{"file larger than total", func(c *Config) { c.MaxFileSize = c.MaxTotalFilesSize + 1 }},
		{"zero files count", func(c *Config) { c.MaxFilesCount = 0 }},
		{"zero output cap", func(c *Config) { c.MaxOutputSize = 0 }},
		{"empty packages dir", func(c *Config) { c.PackagesDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 8080
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
}
