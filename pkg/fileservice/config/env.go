package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// FromEnv applies environment variable overrides. Variables that are not set
// leave the current value untouched.
//
//	SERVER_PORT        - Server port (default: "8080")
//	ENVIRONMENT        - Runtime environment (default: "development")
//	LOG_LEVEL          - debug, info, warn, error (default: "info")
//	BASE_PATH          - Directory for the filesystem backend
//	MAX_FILE_SIZE      - Largest readable file in bytes (default: 1048576)
//	BATCH_CONCURRENCY  - Parallel batch items (default: 4)
//	STORAGE_URL        - "file:///path", "memory://" or "s3://bucket?region=.."
//	RULES_FILE         - YAML transform rules
//	TRANSFORM_PRESET   - "default", "uppercase" or empty
//	API_KEY_SHA256     - Require an API key with this SHA-256 digest
//	ENABLE_METRICS     - Serve /metrics (default: true)
//	ENABLE_EVENT_LOGGING - Log lifecycle events (default: true)
func FromEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// FromFile reads a yaml, json or toml config file. Environment variables
// still take precedence over values from the file.
func FromFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// LoadServerConfig loads configuration from the environment on top of defaults
func LoadServerConfig() (*ServerConfig, error) {
	return Load(FromEnv())
}

// Usage describes the environment variables understood by FromEnv
func Usage() (string, error) {
	var cfg ServerConfig
	return cleanenv.GetDescription(&cfg, nil)
}
