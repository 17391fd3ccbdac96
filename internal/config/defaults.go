package config

import "github.com/bobmcallan/managed-db-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: "30s",
		},
		Server: ServerConfig{
			Name: "managed-db",
			Port: 8090,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/managed-db-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "managed-db-mcp",
		},
	}
}
