package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/jsonpipe/internal/pipeline"
	"github.com/ajitpratap0/jsonpipe/pkg/config"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/observability"
	"github.com/ajitpratap0/jsonpipe/pkg/warehouse"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFunc executes a resolved configuration; dryRun only renders statements
type runFunc func(ctx context.Context, cfg *config.Config, dryRun bool) error

func newRootCmd() *cobra.Command {
	return buildRootCmd(runPipeline)
}

func buildRootCmd(run runFunc) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("JSONPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "jsonpipe",
		Short: "Load JSON objects from a bucket into a warehouse table",
		Long: `jsonpipe reads every JSON object in a bucket, flattens the documents into one
table, stages the rows as CSV chunks and bulk-copies them into Redshift or
Snowflake with a single COPY statement.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-encoding", "", "Log encoding (json, console)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsonpipe v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the load pipeline",
		Long: `Run lists the source bucket, stages the tabulated rows and loads them.

Example:
  jsonpipe run --bucket clicks-raw --table clicks_impressions --nodes 4 \
    --dsn "$REDSHIFT_DSN" --credentials "aws_iam_role=arn:aws:iam::123:role/load"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v, cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, false)
		},
	}
	addPipelineFlags(runCmd)
	runCmd.Flags().String("dsn", "", "Warehouse connection string")
	runCmd.Flags().String("credentials", "", "Credentials clause passed to COPY")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().Bool("tracing", false, "Export OpenTelemetry spans to stderr")
	root.AddCommand(runCmd)

	ddlCmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the CREATE TABLE and COPY statements without loading",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v, cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, true)
		},
	}
	addPipelineFlags(ddlCmd)
	root.AddCommand(ddlCmd)

	return root
}

func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("bucket", "", "Source bucket")
	f.String("prefix", "", "Only read keys under this prefix")
	f.String("provider", "", "Object store provider (s3, gcs)")
	f.String("region", "", "Object store region")
	f.String("endpoint", "", "Object store endpoint override")
	f.String("table", "", "Destination table")
	f.String("dialect", "", "Warehouse dialect (redshift, snowflake)")
	f.Int("nodes", 0, "Number of staged chunks, normally the warehouse slice count")
	f.String("staging-bucket", "", "Staging bucket (defaults to the source bucket)")
	f.String("folder", "", "Staging folder")
	f.String("compression", "", "Chunk compression (none, gzip, zstd)")
	f.String("namer", "", "Staging key strategy (random, hash)")
	f.String("seed", "", "Seed for the hash key strategy")
	f.String("dist-style", "", "Redshift DISTSTYLE (ALL, EVEN, AUTO)")
	f.String("mixed-types", "", "Mixed-type columns: fail or text")
	f.Duration("timeout", 0, "Abort the run after this duration")
}

// flagKeys maps config keys to the flags that override them. Not every
// command defines every flag.
var flagKeys = map[string]string{
	"logging.level":              "log-level",
	"logging.encoding":           "log-encoding",
	"source.bucket":              "bucket",
	"source.prefix":              "prefix",
	"storage.provider":           "provider",
	"storage.region":             "region",
	"storage.endpoint":           "endpoint",
	"warehouse.table":            "table",
	"warehouse.dialect":          "dialect",
	"warehouse.dsn":              "dsn",
	"warehouse.credentials":      "credentials",
	"warehouse.dist_style":       "dist-style",
	"warehouse.mixed_types":      "mixed-types",
	"staging.nodes":              "nodes",
	"staging.bucket":             "staging-bucket",
	"staging.folder":             "folder",
	"staging.compression":        "compression",
	"staging.namer":              "namer",
	"staging.seed":               "seed",
	"observability.metrics_addr": "metrics-addr",
	"observability.tracing":      "tracing",
	"timeout":                    "timeout",
}

// bindFlags points viper at the flags of the command being executed. viper
// keeps a single binding per key, so this happens per invocation.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to bind flag").
				WithDetail("flag", name)
		}
	}
	return nil
}

func runPipeline(ctx context.Context, cfg *config.Config, dryRun bool) (err error) {
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().With(zap.String("component", "jsonpipe-cli"))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Observability.Tracing && !dryRun,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		SamplingRate:   1,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if !dryRun && cfg.Observability.MetricsAddr != "" {
		stopMetrics := serveMetrics(cfg.Observability.MetricsAddr, log)
		defer stopMetrics()
	}

	params, err := pipeline.ParamsFromConfig(cfg)
	if err != nil {
		return err
	}
	params.DryRun = dryRun
	params.Logger = log

	store, closeStore, err := pipeline.NewStore(ctx, cfg.Storage, cfg.Staging.Concurrency, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	params.Store = store

	if !dryRun {
		if cfg.Warehouse.DSN == "" {
			return errors.New(errors.ErrorTypeConfig, "warehouse.dsn is required (--dsn or JSONPIPE_WAREHOUSE_DSN)")
		}
		if cfg.Warehouse.Credentials == "" {
			return errors.New(errors.ErrorTypeConfig, "warehouse.credentials is required (--credentials or JSONPIPE_WAREHOUSE_CREDENTIALS)")
		}
		conn, err := warehouse.Open(ctx, params.Dialect, cfg.Warehouse.DSN)
		if err != nil {
			return err
		}
		params.Conn = conn
	}

	res, err := pipeline.Run(ctx, params)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(res.Statements.CreateTable)
		fmt.Println()
		fmt.Println(res.Statements.Copy)
	}
	return nil
}
