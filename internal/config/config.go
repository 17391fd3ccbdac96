package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/managed-db-mcp/internal/common"
)

// DefaultAPIURL is the Managed DB control-plane base URL used when nothing overrides it.
const DefaultAPIURL = "http://localhost:8080/api"

// Config represents the application configuration.
type Config struct {
	API       APIConfig            `toml:"api"`
	Server    ServerConfig         `toml:"server"`
	Logging   common.LoggingConfig `toml:"logging"`
	Telemetry TelemetryConfig      `toml:"telemetry"`
}

// APIConfig describes the Managed DB control-plane API.
type APIConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the request timeout
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port int    `toml:"port"` // streamable HTTP transport only
}

// TelemetryConfig contains OpenTelemetry instrumentation settings.
type TelemetryConfig struct {
	ServiceName  string `toml:"service_name"`
	OTLPEndpoint string `toml:"otlp_endpoint"` // empty disables trace export
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Missing files are skipped; unreadable or invalid files are errors.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies MANAGED_DB_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if url := os.Getenv("MANAGED_DB_API_URL"); url != "" {
		config.API.URL = url
	}
	if timeout := os.Getenv("MANAGED_DB_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if level := os.Getenv("MANAGED_DB_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if endpoint := os.Getenv("MANAGED_DB_OTLP_ENDPOINT"); endpoint != "" {
		config.Telemetry.OTLPEndpoint = endpoint
	}
	if port := os.Getenv("MANAGED_DB_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, apiURL string, port int) {
	if apiURL != "" {
		config.API.URL = apiURL
	}
	if port > 0 {
		config.Server.Port = port
	}
}
