package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/events"
	"github.com/tendant/simple-fileservice/pkg/fileservice/repo/memory"
	fsstorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/fs"
	memorystorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/memory"
	s3storage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/s3"
	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		MaxFileSize:        fileservice.DefaultMaxFileSize,
		BatchConcurrency:   fileservice.DefaultBatchConcurrency,
		EnableMetrics:      true,
		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the fileservice binaries. The
// struct tags drive cleanenv for both environment variables and config files.
type ServerConfig struct {
	Port        string `yaml:"port" json:"port" toml:"port" env:"SERVER_PORT"`
	Environment string `yaml:"environment" json:"environment" toml:"environment" env:"ENVIRONMENT"` // development, production, testing
	LogLevel    string `yaml:"log_level" json:"log_level" toml:"log_level" env:"LOG_LEVEL"`

	// Content store
	BasePath         string `yaml:"base_path" json:"base_path" toml:"base_path" env:"BASE_PATH"`
	MaxFileSize      int64  `yaml:"max_file_size" json:"max_file_size" toml:"max_file_size" env:"MAX_FILE_SIZE"`
	BatchConcurrency int    `yaml:"batch_concurrency" json:"batch_concurrency" toml:"batch_concurrency" env:"BATCH_CONCURRENCY"`

	// StorageURL selects the blob store: file:///path, memory:// or
	// s3://bucket/prefix?region=..&endpoint=..&path_style=true. Empty means
	// the filesystem at BasePath.
	StorageURL string `yaml:"storage_url" json:"storage_url" toml:"storage_url" env:"STORAGE_URL"`

	// Transform
	RulesFile       string `yaml:"rules_file" json:"rules_file" toml:"rules_file" env:"RULES_FILE"`
	TransformPreset string `yaml:"transform_preset" json:"transform_preset" toml:"transform_preset" env:"TRANSFORM_PRESET"`

	// Server options
	APIKeySHA256       string `yaml:"api_key_sha256" json:"api_key_sha256" toml:"api_key_sha256" env:"API_KEY_SHA256"`
	EnableMetrics      bool   `yaml:"enable_metrics" json:"enable_metrics" toml:"enable_metrics" env:"ENABLE_METRICS"`
	EnableEventLogging bool   `yaml:"enable_event_logging" json:"enable_event_logging" toml:"enable_event_logging" env:"ENABLE_EVENT_LOGGING"`
}

// StorageConfig is the parsed form of StorageURL
type StorageConfig struct {
	Type      string // "fs", "memory", "s3"
	BaseDir   string
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("batch_concurrency must be positive, got %d", c.BatchConcurrency)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := transform.Preset(c.TransformPreset); err != nil {
		return err
	}

	storage, err := c.Storage()
	if err != nil {
		return err
	}
	if storage.Type == "fs" && storage.BaseDir == "" {
		return &fileservice.ConfigMissingError{Variable: "BASE_PATH"}
	}

	return nil
}

// Storage parses StorageURL
func (c *ServerConfig) Storage() (StorageConfig, error) {
	raw := strings.TrimSpace(c.StorageURL)
	if raw == "" {
		return StorageConfig{Type: "fs", BaseDir: c.BasePath}, nil
	}
	if raw == "memory" {
		return StorageConfig{Type: "memory"}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "memory":
		return StorageConfig{Type: "memory"}, nil

	case "file":
		baseDir := u.Path
		if baseDir == "" {
			baseDir = c.BasePath
		}
		return StorageConfig{Type: "fs", BaseDir: baseDir}, nil

	case "s3":
		if u.Host == "" {
			return StorageConfig{}, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		storage := StorageConfig{
			Type:     "s3",
			Bucket:   u.Host,
			Prefix:   strings.Trim(u.Path, "/"),
			Region:   q.Get("region"),
			Endpoint: q.Get("endpoint"),
		}
		if v := q.Get("path_style"); v != "" {
			storage.PathStyle, err = strconv.ParseBool(v)
			if err != nil {
				return StorageConfig{}, fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
			}
		}
		return storage, nil

	default:
		return StorageConfig{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
	}
}

// BuildService creates a Service instance from the server configuration.
// Extra options are applied last and override the defaults built here.
func (c *ServerConfig) BuildService(extra ...fileservice.Option) (fileservice.Service, error) {
	blob, err := c.buildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	store, err := fileservice.NewContentStore(blob,
		fileservice.WithMaxFileSize(c.MaxFileSize),
		fileservice.WithBatchConcurrency(c.BatchConcurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build content store: %w", err)
	}

	pipeline, err := c.buildPipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to load transform rules: %w", err)
	}

	options := []fileservice.Option{
		fileservice.WithContentStore(store),
		fileservice.WithUserRegistry(memory.New()),
		fileservice.WithPipeline(pipeline),
	}

	base, err := transform.Preset(c.TransformPreset)
	if err != nil {
		return nil, err
	}
	if base != nil {
		options = append(options, fileservice.WithBaseTransformer(base))
	}

	if c.EnableEventLogging {
		options = append(options, fileservice.WithEventSink(events.NewLoggingSink(nil)))
	}

	options = append(options, extra...)
	return fileservice.New(options...)
}

func (c *ServerConfig) buildBlobStore() (fileservice.BlobStore, error) {
	storage, err := c.Storage()
	if err != nil {
		return nil, err
	}

	switch storage.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		if storage.BaseDir == "" {
			return nil, &fileservice.ConfigMissingError{Variable: "BASE_PATH"}
		}
		return fsstorage.New(fsstorage.Config{BaseDir: storage.BaseDir})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:       storage.Region,
			Bucket:       storage.Bucket,
			Prefix:       storage.Prefix,
			Endpoint:     storage.Endpoint,
			UsePathStyle: storage.PathStyle,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", storage.Type)
	}
}

func (c *ServerConfig) buildPipeline() (*transform.Pipeline, error) {
	if c.RulesFile == "" {
		return transform.New(), nil
	}
	rules, err := transform.LoadRulesFile(c.RulesFile)
	if err != nil {
		return nil, err
	}
	return transform.New(rules...), nil
}

// ParseLogLevel parses debug, info, warn or error (case-insensitive)
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// IsDevelopment reports whether the config targets local development
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
