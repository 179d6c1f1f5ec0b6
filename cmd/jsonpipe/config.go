package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/jsonpipe/pkg/config"
)

// resolveConfig layers the config file, JSONPIPE_* environment variables and
// command line flags, in increasing precedence
func resolveConfig(v *viper.Viper, cmd *cobra.Command) (*config.Config, error) {
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	cfg := &config.Config{}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}

	overlay(cfg, v)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlay(cfg *config.Config, v *viper.Viper) {
	setString(v, "source.bucket", &cfg.Source.Bucket)
	setString(v, "source.prefix", &cfg.Source.Prefix)
	setInt(v, "source.concurrency", &cfg.Source.Concurrency)

	setString(v, "storage.provider", &cfg.Storage.Provider)
	setString(v, "storage.region", &cfg.Storage.Region)
	setString(v, "storage.endpoint", &cfg.Storage.Endpoint)
	setString(v, "storage.credentials_file", &cfg.Storage.CredentialsFile)
	if v.IsSet("storage.path_style") {
		cfg.Storage.PathStyle = v.GetBool("storage.path_style")
	}

	setString(v, "staging.bucket", &cfg.Staging.Bucket)
	setString(v, "staging.folder", &cfg.Staging.Folder)
	setString(v, "staging.suffix", &cfg.Staging.Suffix)
	setString(v, "staging.extension", &cfg.Staging.Extension)
	setInt(v, "staging.nodes", &cfg.Staging.Nodes)
	setString(v, "staging.namer", &cfg.Staging.Namer)
	setString(v, "staging.seed", &cfg.Staging.Seed)
	setInt(v, "staging.prefix_length", &cfg.Staging.PrefixLength)
	setString(v, "staging.compression", &cfg.Staging.Compression)
	setInt(v, "staging.concurrency", &cfg.Staging.Concurrency)

	setString(v, "warehouse.dialect", &cfg.Warehouse.Dialect)
	setString(v, "warehouse.dsn", &cfg.Warehouse.DSN)
	setString(v, "warehouse.table", &cfg.Warehouse.Table)
	setString(v, "warehouse.credentials", &cfg.Warehouse.Credentials)
	setString(v, "warehouse.mixed_types", &cfg.Warehouse.MixedTypes)
	setInt(v, "warehouse.varchar_length", &cfg.Warehouse.VarcharLength)
	if v.IsSet("warehouse.dist_style") {
		style := v.GetString("warehouse.dist_style")
		cfg.Warehouse.DistStyle = &style
	}

	setString(v, "logging.level", &cfg.Logging.Level)
	setString(v, "logging.encoding", &cfg.Logging.Encoding)

	setString(v, "observability.metrics_addr", &cfg.Observability.MetricsAddr)
	if v.IsSet("observability.tracing") {
		cfg.Observability.Tracing = v.GetBool("observability.tracing")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}
