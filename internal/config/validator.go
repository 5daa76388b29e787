package config

import "fmt"

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Logging.Level != "" && !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port: %d", c.Gateway.Port)
	}
	if c.Gateway.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat interval must not be negative")
	}
	if c.Gateway.ToolTimeout < 0 {
		return fmt.Errorf("tool timeout must not be negative")
	}

	if c.FileServer.Enabled && c.FileServer.Root == "" {
		return fmt.Errorf("file server root is required when the file server is enabled")
	}

	if c.Tutorials.Enabled && c.Tutorials.ContentDir == "" {
		return fmt.Errorf("tutorials content directory is required when tutorials are enabled")
	}

	return nil
}
