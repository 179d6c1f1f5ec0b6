package config

import (
	"time"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/schema"
)

// Config is the complete configuration of one pipeline run
type Config struct {
	Source        SourceConfig        `yaml:"source" json:"source"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	Staging       StagingConfig       `yaml:"staging" json:"staging"`
	Warehouse     WarehouseConfig     `yaml:"warehouse" json:"warehouse"`
	Logging       logger.Config       `yaml:"logging" json:"logging"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
	// Timeout bounds the whole run; zero means no limit
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// SourceConfig addresses the JSON objects to ingest
type SourceConfig struct {
	Bucket string `yaml:"bucket" json:"bucket"`
	// Prefix restricts the listing; empty lists the whole bucket
	Prefix      string `yaml:"prefix" json:"prefix"`
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
}

// StorageConfig selects and configures the object store backend
type StorageConfig struct {
	// Provider is s3 or gcs
	Provider        string `yaml:"provider" json:"provider"`
	Region          string `yaml:"region" json:"region"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	PathStyle       bool   `yaml:"path_style" json:"path_style"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// StagingConfig controls chunk partitioning and upload
type StagingConfig struct {
	// Bucket is empty to stage into the source bucket
	Bucket    string `yaml:"bucket" json:"bucket"`
	Folder    string `yaml:"folder" json:"folder"`
	Suffix    string `yaml:"suffix" json:"suffix"`
	Extension string `yaml:"extension" json:"extension"`
	// Nodes is the number of chunks, normally the warehouse slice count.
	// It has no default.
	Nodes int `yaml:"nodes" json:"nodes"`
	// Namer is random or hash
	Namer        string `yaml:"namer" json:"namer"`
	Seed         string `yaml:"seed" json:"seed"`
	PrefixLength int    `yaml:"prefix_length" json:"prefix_length"`
	// Compression is none, gzip or zstd
	Compression string `yaml:"compression" json:"compression"`
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
}

// WarehouseConfig addresses the destination table
type WarehouseConfig struct {
	// Dialect is redshift or snowflake
	Dialect     string `yaml:"dialect" json:"dialect"`
	DSN         string `yaml:"dsn" json:"dsn"`
	Table       string `yaml:"table" json:"table"`
	Credentials string `yaml:"credentials" json:"credentials"`
	// DistStyle is ALL, EVEN, AUTO or empty to omit the clause
	DistStyle     *string `yaml:"dist_style" json:"dist_style"`
	VarcharLength int     `yaml:"varchar_length" json:"varchar_length"`
	// MixedTypes is fail or text
	MixedTypes string `yaml:"mixed_types" json:"mixed_types"`
}

// ObservabilityConfig enables tracing and the metrics endpoint
type ObservabilityConfig struct {
	Tracing     bool   `yaml:"tracing" json:"tracing"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	// MetricsAddr serves /metrics when set (":9090")
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// New returns a configuration with every default applied
func New() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field
func (c *Config) ApplyDefaults() {
	if c.Source.Concurrency <= 0 {
		c.Source.Concurrency = 8
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "s3"
	}
	if c.Staging.Folder == "" {
		c.Staging.Folder = "staging"
	}
	if c.Staging.Suffix == "" {
		c.Staging.Suffix = "_chunk"
	}
	if c.Staging.Extension == "" {
		c.Staging.Extension = ".csv"
	}
	if c.Staging.Namer == "" {
		c.Staging.Namer = "random"
	}
	if c.Staging.PrefixLength == 0 {
		c.Staging.PrefixLength = 6
	}
	if c.Staging.Compression == "" {
		c.Staging.Compression = "none"
	}
	if c.Staging.Concurrency <= 0 {
		c.Staging.Concurrency = 8
	}
	if c.Warehouse.Dialect == "" {
		c.Warehouse.Dialect = "redshift"
	}
	if c.Warehouse.DistStyle == nil {
		style := "ALL"
		if c.Warehouse.Dialect == "snowflake" {
			style = ""
		}
		c.Warehouse.DistStyle = &style
	}
	if c.Warehouse.VarcharLength <= 0 {
		c.Warehouse.VarcharLength = 256
	}
	if c.Warehouse.MixedTypes == "" {
		c.Warehouse.MixedTypes = "fail"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "jsonpipe"
	}
}

// Validate checks required fields and value ranges. Connection settings
// (dsn, credentials) are checked by the commands that need them.
func (c *Config) Validate() error {
	switch {
	case c.Source.Bucket == "":
		return configError("source.bucket is required")
	case c.Warehouse.Table == "":
		return configError("warehouse.table is required")
	case c.Staging.Nodes <= 0:
		return configError("staging.nodes must be positive")
	case c.Staging.PrefixLength < 0:
		return configError("staging.prefix_length cannot be negative")
	case c.Timeout < 0:
		return configError("timeout cannot be negative")
	}

	if err := oneOf("storage.provider", c.Storage.Provider, "s3", "gcs"); err != nil {
		return err
	}
	if err := oneOf("staging.namer", c.Staging.Namer, "random", "hash"); err != nil {
		return err
	}
	if err := oneOf("staging.compression", c.Staging.Compression, "none", "gzip", "zstd"); err != nil {
		return err
	}
	if err := oneOf("warehouse.dialect", c.Warehouse.Dialect, "redshift", "snowflake"); err != nil {
		return err
	}
	if err := oneOf("warehouse.mixed_types", c.Warehouse.MixedTypes, "fail", "text"); err != nil {
		return err
	}

	if !schema.ValidDistStyle(c.Warehouse.DistStyleValue()) {
		return configError("warehouse.dist_style must be ALL, EVEN, AUTO or empty")
	}
	if c.Warehouse.Dialect == "redshift" && c.Storage.Provider != "s3" {
		return configError("redshift can only copy from s3 storage")
	}
	return nil
}

// StagingBucket returns the bucket chunks are staged in: staging.bucket, or
// the source bucket when that is unset
func (c *Config) StagingBucket() string {
	if c.Staging.Bucket != "" {
		return c.Staging.Bucket
	}
	return c.Source.Bucket
}

// DistStyleValue returns the configured dist style, empty when unset
func (w *WarehouseConfig) DistStyleValue() string {
	if w.DistStyle == nil {
		return ""
	}
	return *w.DistStyle
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeConfig, "%s must be one of %v, got %q", field, allowed, value).
		WithDetail("field", field)
}

func configError(msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg)
}
