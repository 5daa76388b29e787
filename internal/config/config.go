package config

// Config represents the main MCP Demo configuration
type Config struct {
	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Servers
	Calculator CalculatorConfig `json:"calculator" mapstructure:"calculator"`
	FileServer FileServerConfig `json:"file_server" mapstructure:"file_server"`

	// Gateway configuration
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`

	// Tutorials configuration
	Tutorials TutorialsConfig `json:"tutorials" mapstructure:"tutorials"`

	// Metrics configuration
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// CalculatorConfig holds calculator server configuration
type CalculatorConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// FileServerConfig holds file system server configuration
type FileServerConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Root    string `json:"root" mapstructure:"root"`
}

// GatewayConfig holds gateway server configuration
type GatewayConfig struct {
	Host              string `json:"host" mapstructure:"host"`
	Port              int    `json:"port" mapstructure:"port"`
	HeartbeatInterval int    `json:"heartbeat_interval" mapstructure:"heartbeat_interval"` // seconds
	ToolTimeout       int    `json:"tool_timeout" mapstructure:"tool_timeout"`             // seconds
}

// TutorialsConfig holds tutorial content and progress configuration
type TutorialsConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	ContentDir string `json:"content_dir" mapstructure:"content_dir"`
	DBPath     string `json:"db_path" mapstructure:"db_path"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		Calculator: CalculatorConfig{
			Enabled: true,
		},
		FileServer: FileServerConfig{
			Enabled: false,
		},
		Gateway: GatewayConfig{
			Host:              "localhost",
			Port:              5000,
			HeartbeatInterval: 30,
			ToolTimeout:       30,
		},
		Tutorials: TutorialsConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
