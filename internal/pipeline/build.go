package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/jsonpipe/pkg/compression"
	"github.com/ajitpratap0/jsonpipe/pkg/config"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/keys"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
	"github.com/ajitpratap0/jsonpipe/pkg/schema"
	"github.com/ajitpratap0/jsonpipe/pkg/warehouse"
)

// NewStore builds the object store backend named by cfg.Provider. The
// returned close function releases the backend's clients.
func NewStore(ctx context.Context, cfg config.StorageConfig, uploadConcurrency int, log *zap.Logger) (objectstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case "", "s3":
		s, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Region:            cfg.Region,
			Endpoint:          cfg.Endpoint,
			UsePathStyle:      cfg.PathStyle,
			UploadConcurrency: uploadConcurrency,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case "gcs":
		s, err := objectstore.NewGCSStore(ctx, objectstore.GCSConfig{
			CredentialsFile: cfg.CredentialsFile,
			Endpoint:        cfg.Endpoint,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	default:
		return nil, noop, errors.Newf(errors.ErrorTypeConfig, "unsupported storage provider: %s", cfg.Provider)
	}
}

// NewNamer builds the staging key strategy
func NewNamer(cfg config.StagingConfig) (keys.Namer, error) {
	switch cfg.Namer {
	case "", "random":
		return keys.NewRandomNamer(cfg.PrefixLength), nil
	case "hash":
		return keys.NewHashNamer(cfg.Seed, cfg.PrefixLength), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported key namer: %s", cfg.Namer)
	}
}

// ParamsFromConfig maps a validated configuration onto run parameters.
// Store and Conn are left for the caller to supply.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	namer, err := NewNamer(cfg.Staging)
	if err != nil {
		return Params{}, err
	}

	algorithm, err := compression.ParseAlgorithm(cfg.Staging.Compression)
	if err != nil {
		return Params{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid staging.compression")
	}
	compressor, err := compression.NewCompressor(algorithm, compression.Default)
	if err != nil {
		return Params{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid staging.compression")
	}

	dialect, err := warehouse.ParseDialect(cfg.Warehouse.Dialect)
	if err != nil {
		return Params{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid warehouse.dialect")
	}

	schemaOpts := warehouse.SchemaOptions(dialect, cfg.Warehouse.VarcharLength)
	schemaOpts.DistStyle = cfg.Warehouse.DistStyleValue()
	schemaOpts.MixedPolicy = schema.MixedPolicy(cfg.Warehouse.MixedTypes)

	return Params{
		Bucket:            cfg.Source.Bucket,
		Prefix:            cfg.Source.Prefix,
		Credentials:       cfg.Warehouse.Credentials,
		Table:             cfg.Warehouse.Table,
		Nodes:             cfg.Staging.Nodes,
		Namer:             namer,
		StagingBucket:     cfg.StagingBucket(),
		Folder:            cfg.Staging.Folder,
		Suffix:            cfg.Staging.Suffix,
		Extension:         cfg.Staging.Extension,
		Compressor:        compressor,
		Dialect:           dialect,
		Schema:            &schemaOpts,
		ReadConcurrency:   cfg.Source.Concurrency,
		UploadConcurrency: cfg.Staging.Concurrency,
	}, nil
}
