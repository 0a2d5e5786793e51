package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithBasePath sets the directory served by the filesystem backend
func WithBasePath(path string) Option {
	return func(c *ServerConfig) error {
		c.BasePath = path
		return nil
	}
}

// WithMaxFileSize sets the largest file the content store will read
func WithMaxFileSize(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max file size must be positive, got %d", n)
		}
		c.MaxFileSize = n
		return nil
	}
}

// WithBatchConcurrency bounds how many batch items run at once
func WithBatchConcurrency(n int) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("batch concurrency must be positive, got %d", n)
		}
		c.BatchConcurrency = n
		return nil
	}
}

// WithStorageURL selects the blob store
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = storageURL
		return nil
	}
}

// WithRulesFile loads transform rules from a YAML file at build time
func WithRulesFile(path string) Option {
	return func(c *ServerConfig) error {
		c.RulesFile = path
		return nil
	}
}

// WithTransformPreset sets a built-in transformer applied before the rules
func WithTransformPreset(name string) Option {
	return func(c *ServerConfig) error {
		c.TransformPreset = name
		return nil
	}
}

// WithLogLevel sets the log level (debug, info, warn, error)
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		if _, err := ParseLogLevel(level); err != nil {
			return err
		}
		c.LogLevel = level
		return nil
	}
}

// WithAPIKeySHA256 protects the API with a key whose SHA-256 hex digest is given
func WithAPIKeySHA256(sum string) Option {
	return func(c *ServerConfig) error {
		c.APIKeySHA256 = sum
		return nil
	}
}

// WithMetrics enables or disables the /metrics endpoint
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithEventLogging enables or disables the logging event sink
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
