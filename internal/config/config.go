// Package config loads the expdb server configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"expdb/internal/audit"
	"expdb/internal/blob"
	"expdb/internal/observability"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener. Durations use time.ParseDuration syntax.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// MaxConnections caps concurrently accepted connections; 0 means unlimited.
	MaxConnections int `yaml:"max_connections"`
}

// DatasetsConfig selects where dataset files are read from.
type DatasetsConfig struct {
	Driver  string   `yaml:"driver"` // fs, s3, memory
	BaseDir string   `yaml:"base_dir"`
	S3      S3Config `yaml:"s3"`
}

// S3Config configures the s3 dataset driver.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// MetricsConfig selects the metrics backend and its endpoint.
type MetricsConfig struct {
	Backend string `yaml:"backend"` // prometheus, expvar, none
	Path    string `yaml:"path"`
}

// AuditConfig selects the query audit backend.
type AuditConfig struct {
	Driver string `yaml:"driver"` // none, memory, sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":4002",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "5s",
		},
		Datasets: DatasetsConfig{
			Driver:  string(blob.DriverFilesystem),
			BaseDir: "/expdb/",
			S3:      S3Config{Region: "us-east-1"},
		},
		Metrics: MetricsConfig{
			Backend: string(observability.BackendPrometheus),
			Path:    "/metrics",
		},
		Audit: AuditConfig{
			Driver: string(audit.DriverNone),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply in both cases. An empty path skips
// the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// #nosec G304: operator supplied configuration path.
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EXPDB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("EXPDB_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.MaxConnections = n
		}
	}
	if v := os.Getenv("EXPDB_DATASET_DRIVER"); v != "" {
		c.Datasets.Driver = v
	}
	if v := os.Getenv("EXPDB_BASE_DIR"); v != "" {
		c.Datasets.BaseDir = v
	}
	if v := os.Getenv("EXPDB_S3_BUCKET"); v != "" {
		c.Datasets.S3.Bucket = v
	}
	if v := os.Getenv("EXPDB_S3_REGION"); v != "" {
		c.Datasets.S3.Region = v
	}
	if v := os.Getenv("EXPDB_S3_ENDPOINT"); v != "" {
		c.Datasets.S3.Endpoint = v
	}
	if v := os.Getenv("EXPDB_S3_PATH_STYLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Datasets.S3.PathStyle = b
		}
	}
	if v := os.Getenv("EXPDB_METRICS_BACKEND"); v != "" {
		c.Metrics.Backend = v
	}
	if v := os.Getenv("EXPDB_AUDIT_DRIVER"); v != "" {
		c.Audit.Driver = v
	}
	if v := os.Getenv("EXPDB_AUDIT_DSN"); v != "" {
		c.Audit.DSN = v
	}
	if v := os.Getenv("EXPDB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects unknown drivers, backends and malformed durations.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, errors.New("server.max_connections must not be negative"))
	}
	for name, raw := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if _, err := parseDuration(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch blob.Driver(c.Datasets.Driver) {
	case blob.DriverFilesystem, "":
		if c.Datasets.BaseDir == "" {
			errs = append(errs, errors.New("datasets.base_dir required for fs driver"))
		}
	case blob.DriverS3:
		if c.Datasets.S3.Bucket == "" {
			errs = append(errs, errors.New("datasets.s3.bucket required for s3 driver"))
		}
	case blob.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown datasets.driver %q", c.Datasets.Driver))
	}

	switch observability.Backend(c.Metrics.Backend) {
	case observability.BackendPrometheus, observability.BackendExpvar:
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
		}
	case observability.BackendNone, "":
	default:
		errs = append(errs, fmt.Errorf("unknown metrics.backend %q", c.Metrics.Backend))
	}

	switch audit.Driver(c.Audit.Driver) {
	case audit.DriverNone, "", audit.DriverMemory:
	case audit.DriverSQLite, audit.DriverPostgres:
		if c.Audit.DSN == "" {
			errs = append(errs, fmt.Errorf("audit.dsn required for %s driver", c.Audit.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown audit.driver %q", c.Audit.Driver))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }

// BlobConfig converts the dataset section into a blob.Config.
func (c *Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver:  blob.Driver(c.Datasets.Driver),
		BaseDir: c.Datasets.BaseDir,
		S3: blob.S3Config{
			Bucket:    c.Datasets.S3.Bucket,
			Region:    c.Datasets.S3.Region,
			Prefix:    c.Datasets.S3.Prefix,
			Endpoint:  c.Datasets.S3.Endpoint,
			PathStyle: c.Datasets.S3.PathStyle,
		},
	}
}

// parseDuration accepts an empty string as zero.
func parseDuration(raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// mustDuration is only called on validated configuration.
func mustDuration(raw string) time.Duration {
	d, _ := parseDuration(raw)
	return d
}
