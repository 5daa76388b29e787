package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Calculator.Enabled)
	assert.False(t, cfg.FileServer.Enabled)
	assert.Equal(t, "localhost", cfg.Gateway.Host)
	assert.Equal(t, 5000, cfg.Gateway.Port)
	assert.Equal(t, 30, cfg.Gateway.HeartbeatInterval)
	assert.Equal(t, 30, cfg.Gateway.ToolTimeout)
	assert.True(t, cfg.Metrics.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"zero port", func(c *Config) { c.Gateway.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Gateway.Port = 70000 }, true},
		{"negative heartbeat", func(c *Config) { c.Gateway.HeartbeatInterval = -1 }, true},
		{"negative timeout", func(c *Config) { c.Gateway.ToolTimeout = -1 }, true},
		{"file server without root", func(c *Config) { c.FileServer.Enabled = true }, true},
		{"file server with root", func(c *Config) {
			c.FileServer.Enabled = true
			c.FileServer.Root = "/tmp/files"
		}, false},
		{"tutorials without content dir", func(c *Config) { c.Tutorials.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Gateway.Port)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.Logging.File)
	assert.NotEmpty(t, cfg.Tutorials.DBPath)
}

func TestLoader_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"gateway": {"host": "0.0.0.0", "port": 9000},
		"file_server": {"enabled": true, "root": "/srv/files"},
		"data_dir": "/var/lib/mcp-demo"
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Gateway.Host)
	assert.Equal(t, 9000, cfg.Gateway.Port)
	assert.True(t, cfg.FileServer.Enabled)
	assert.Equal(t, "/srv/files", cfg.FileServer.Root)
	assert.Equal(t, "/var/lib/mcp-demo", cfg.DataDir)

	// Fields absent from the file keep their defaults.
	assert.True(t, cfg.Calculator.Enabled)
	assert.Equal(t, 30, cfg.Gateway.ToolTimeout)
}

func TestLoader_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gateway": {"port": -1}}`), 0644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	loader := NewLoader(path)

	cfg := DefaultConfig()
	cfg.Gateway.Port = 6001
	cfg.DataDir = t.TempDir()
	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 6001, loaded.Gateway.Port)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
}
