package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/jsonpipe/pkg/config"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
)

// resolve runs a command with args and returns the configuration it would
// have executed
func resolve(t *testing.T, args ...string) (*config.Config, bool, error) {
	t.Helper()

	var got *config.Config
	var gotDryRun bool
	root := buildRootCmd(func(_ context.Context, cfg *config.Config, dryRun bool) error {
		got, gotDryRun = cfg, dryRun
		return nil
	})
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	return got, gotDryRun, err
}

func TestResolveConfig_Flags(t *testing.T) {
	cfg, dryRun, err := resolve(t, "ddl",
		"--bucket", "raw",
		"--table", "clicks",
		"--nodes", "4",
		"--compression", "gzip",
		"--dist-style", "",
		"--timeout", "10m")
	require.NoError(t, err)
	assert.True(t, dryRun)

	assert.Equal(t, "raw", cfg.Source.Bucket)
	assert.Equal(t, "raw", cfg.StagingBucket())
	assert.Equal(t, "clicks", cfg.Warehouse.Table)
	assert.Equal(t, 4, cfg.Staging.Nodes)
	assert.Equal(t, "gzip", cfg.Staging.Compression)
	assert.Equal(t, "", cfg.Warehouse.DistStyleValue())
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestResolveConfig_FileEnvAndFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  bucket: from-file
  prefix: events/
warehouse:
  table: from-file
staging:
  nodes: 3
`), 0600))

	t.Setenv("JSONPIPE_WAREHOUSE_TABLE", "from-env")
	t.Setenv("JSONPIPE_STAGING_NODES", "5")
	t.Setenv("JSONPIPE_WAREHOUSE_DSN", "postgres://u:p@h:5439/dev")

	cfg, dryRun, err := resolve(t, "run", "--config", path, "--nodes", "8", "--credentials", "creds")
	require.NoError(t, err)
	assert.False(t, dryRun)

	assert.Equal(t, "from-file", cfg.Source.Bucket)
	assert.Equal(t, "events/", cfg.Source.Prefix)
	assert.Equal(t, "from-env", cfg.Warehouse.Table)
	assert.Equal(t, 8, cfg.Staging.Nodes)
	assert.Equal(t, "postgres://u:p@h:5439/dev", cfg.Warehouse.DSN)
	assert.Equal(t, "creds", cfg.Warehouse.Credentials)
	assert.Equal(t, "ALL", cfg.Warehouse.DistStyleValue())
}

func TestResolveConfig_RunFlags(t *testing.T) {
	cfg, dryRun, err := resolve(t, "run",
		"--bucket", "raw",
		"--table", "clicks",
		"--nodes", "4",
		"--folder", "chunks",
		"--compression", "zstd",
		"--dsn", "postgres://u:p@h:5439/dev",
		"--credentials", "aws_iam_role=arn:aws:iam::1:role/load",
		"--metrics-addr", ":9090")
	require.NoError(t, err)
	assert.False(t, dryRun)

	assert.Equal(t, "raw", cfg.Source.Bucket)
	assert.Equal(t, "clicks", cfg.Warehouse.Table)
	assert.Equal(t, 4, cfg.Staging.Nodes)
	assert.Equal(t, "chunks", cfg.Staging.Folder)
	assert.Equal(t, "zstd", cfg.Staging.Compression)
	assert.Equal(t, "postgres://u:p@h:5439/dev", cfg.Warehouse.DSN)
	assert.Equal(t, "aws_iam_role=arn:aws:iam::1:role/load", cfg.Warehouse.Credentials)
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddr)
}

func TestResolveConfig_EnvOnlyKeys(t *testing.T) {
	t.Setenv("JSONPIPE_STAGING_PREFIX_LENGTH", "10")
	t.Setenv("JSONPIPE_STAGING_EXTENSION", ".txt")
	t.Setenv("JSONPIPE_WAREHOUSE_VARCHAR_LENGTH", "1024")

	cfg, _, err := resolve(t, "ddl", "--bucket", "raw", "--table", "clicks", "--nodes", "2")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Staging.PrefixLength)
	assert.Equal(t, ".txt", cfg.Staging.Extension)
	assert.Equal(t, 1024, cfg.Warehouse.VarcharLength)
}

func TestResolveConfig_ZeroNodes(t *testing.T) {
	_, _, err := resolve(t, "run", "--bucket", "raw", "--table", "clicks", "--nodes", "0")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "staging.nodes")
}

func TestResolveConfig_Invalid(t *testing.T) {
	_, _, err := resolve(t, "ddl", "--table", "t")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "jsonpipe v"+version)
}
