// Package pipeline runs one batch load: list the source bucket, read and
// flatten every JSON document, tabulate, stage the rows as CSV chunks and
// bulk-copy them into the warehouse table.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/jsonpipe/pkg/compression"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/keys"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/metrics"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
	"github.com/ajitpratap0/jsonpipe/pkg/observability"
	"github.com/ajitpratap0/jsonpipe/pkg/reader"
	"github.com/ajitpratap0/jsonpipe/pkg/schema"
	"github.com/ajitpratap0/jsonpipe/pkg/stage"
	"github.com/ajitpratap0/jsonpipe/pkg/tabular"
	"github.com/ajitpratap0/jsonpipe/pkg/warehouse"
)

// Params is everything one run needs
type Params struct {
	// Bucket holds the source objects; Prefix narrows the listing
	Bucket string
	Prefix string
	// Credentials are passed verbatim to the COPY statement
	Credentials string
	// Conn is closed when Run returns, whatever the outcome. May be nil
	// only for a dry run.
	Conn  warehouse.Conn
	Table string
	// Nodes is the number of staged chunks
	Nodes int

	Store objectstore.Store
	Namer keys.Namer

	// StagingBucket defaults to Bucket
	StagingBucket string
	Folder        string
	Suffix        string
	Extension     string
	Compressor    compression.Compressor

	Dialect warehouse.Dialect
	// Schema overrides the dialect's DDL options
	Schema *schema.Options

	ReadConcurrency   int
	UploadConcurrency int

	// DryRun reads and tabulates but only renders the statements
	DryRun bool
	Logger *zap.Logger
}

// Result summarizes a run
type Result struct {
	RunID      string
	Objects    int
	Documents  int
	Rows       int
	Columns    []string
	Chunks     []models.StagedChunk
	Statements warehouse.Statements
	Duration   time.Duration
}

func (p *Params) applyDefaults() {
	if p.StagingBucket == "" {
		p.StagingBucket = p.Bucket
	}
	if p.Folder == "" {
		p.Folder = stage.DefaultFolder
	}
	if p.Suffix == "" {
		p.Suffix = stage.DefaultSuffix
	}
	if p.Extension == "" {
		p.Extension = stage.DefaultExtension
	}
	if p.Dialect == "" {
		p.Dialect = warehouse.Redshift
	}
	if p.Namer == nil {
		p.Namer = keys.NewRandomNamer(keys.DefaultPrefixLength)
	}
	if p.Compressor == nil {
		p.Compressor, _ = compression.NewCompressor(compression.None, compression.Default)
	}
	if p.Logger == nil {
		p.Logger = logger.Get()
	}
}

func (p *Params) validate() error {
	switch {
	case p.Bucket == "":
		return errors.New(errors.ErrorTypeValidation, "source bucket must not be empty")
	case p.Table == "":
		return errors.New(errors.ErrorTypeValidation, "table name must not be empty")
	case p.Nodes <= 0:
		return errors.Newf(errors.ErrorTypeValidation, "node count must be positive, got %d", p.Nodes)
	case p.Store == nil:
		return errors.New(errors.ErrorTypeValidation, "object store is required")
	case p.DryRun:
		return nil
	case p.Conn == nil:
		return errors.New(errors.ErrorTypeValidation, "warehouse connection is required")
	case p.Credentials == "":
		return errors.New(errors.ErrorTypeValidation, "copy credentials must not be empty")
	}
	return nil
}

// Run executes list, read, tabulate, stage and load in order. Each stage
// starts only after the previous one succeeded, so a failed stage never
// leaves a partially loaded table. The warehouse connection is closed on
// every exit path.
func Run(ctx context.Context, p Params) (res *Result, err error) {
	p.applyDefaults()

	res = &Result{RunID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, res.RunID)
	log := logger.WithContext(ctx, p.Logger)
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "pipeline.run",
		attribute.String("run_id", res.RunID),
		attribute.String("bucket", p.Bucket),
		attribute.String("table", p.Table),
		attribute.Int("nodes", p.Nodes),
		attribute.Bool("dry_run", p.DryRun))

	defer func() {
		if p.Conn != nil {
			if cerr := p.Conn.Close(context.WithoutCancel(ctx)); cerr != nil {
				log.Warn("failed to close warehouse connection", zap.Error(cerr))
				if err == nil {
					err = errors.Wrap(cerr, errors.ErrorTypeWarehouse, "failed to close warehouse connection")
				}
			}
		}
		res.Duration = time.Since(start)
		metrics.RunsTotal.WithLabelValues(metrics.Status(err)).Inc()
		observability.EndSpan(span, err)
		if err != nil {
			log.Error("pipeline run failed", zap.Error(err), zap.Duration("duration", res.Duration))
		}
	}()

	if err := p.validate(); err != nil {
		return res, err
	}

	log.Info("pipeline run started",
		zap.String("bucket", p.Bucket),
		zap.String("prefix", p.Prefix),
		zap.String("table", p.Table),
		zap.Int("nodes", p.Nodes),
		zap.Bool("dry_run", p.DryRun))

	// list
	var refs []models.ObjectRef
	err = runStage(ctx, "list", func(ctx context.Context) error {
		var exclude []string
		if p.StagingBucket == p.Bucket {
			exclude = append(exclude, objectstore.FolderPrefix(p.Folder))
		}
		var lerr error
		refs, lerr = objectstore.ListDocuments(ctx, p.Store, p.Bucket, p.Prefix, exclude...)
		return lerr
	})
	if err != nil {
		return res, err
	}
	res.Objects = len(refs)

	// read
	var docs []models.RawDocument
	err = runStage(ctx, "read", func(ctx context.Context) error {
		r := reader.New(p.Store,
			reader.WithConcurrency(p.ReadConcurrency),
			reader.WithLogger(p.Logger))
		var rerr error
		docs, rerr = r.Read(ctx, refs)
		return rerr
	})
	if err != nil {
		return res, err
	}
	res.Documents = len(docs)

	// flatten and tabulate
	var ds *models.Dataset
	err = runStage(ctx, "tabulate", func(context.Context) error {
		ds = tabular.FromDocuments(docs)
		if ds.NumRows() == 0 {
			return errors.New(errors.ErrorTypeValidation, "no rows to load").
				WithDetail("bucket", p.Bucket).
				WithDetail("objects", len(refs))
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Rows = ds.NumRows()
	res.Columns = ds.Columns

	loader := warehouse.NewLoader(p.Conn, p.Dialect, p.loaderOptions()...)
	loadOpts := warehouse.LoadOptions{
		Table: p.Table,
		Source: warehouse.CopySource{
			Scheme:      p.Store.Scheme(),
			Bucket:      p.StagingBucket,
			Folder:      p.Folder,
			Credentials: p.Credentials,
			Compression: p.Compressor.Algorithm(),
		},
	}

	// Schema errors must surface before anything is uploaded
	res.Statements, err = loader.Render(ds, loadOpts)
	if err != nil {
		return res, err
	}
	if p.DryRun {
		log.Info("dry run complete", zap.Int("rows", res.Rows), zap.Int("columns", len(res.Columns)))
		return res, nil
	}

	// stage
	err = runStage(ctx, "stage", func(ctx context.Context) error {
		s := stage.New(p.Store,
			stage.WithNamer(p.Namer),
			stage.WithCompressor(p.Compressor),
			stage.WithLogger(p.Logger))
		var serr error
		res.Chunks, serr = s.Stage(ctx, ds, stage.Options{
			Bucket:      p.StagingBucket,
			Folder:      p.Folder,
			Suffix:      p.Suffix,
			Extension:   p.Extension,
			Nodes:       p.Nodes,
			Concurrency: p.UploadConcurrency,
		})
		return serr
	})
	if err != nil {
		return res, err
	}

	// load
	err = runStage(ctx, "load", func(ctx context.Context) error {
		return loader.Load(ctx, ds, loadOpts)
	})
	if err != nil {
		return res, err
	}

	log.Info("pipeline run complete",
		zap.Int("objects", res.Objects),
		zap.Int("documents", res.Documents),
		zap.Int("rows", res.Rows),
		zap.Int("columns", len(res.Columns)),
		zap.Int("chunks", len(res.Chunks)),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func (p *Params) loaderOptions() []warehouse.LoaderOption {
	opts := []warehouse.LoaderOption{warehouse.WithLogger(p.Logger)}
	if p.Schema != nil {
		opts = append(opts, warehouse.WithSchemaOptions(*p.Schema))
	}
	return opts
}

// runStage times fn, wraps it in a span and tags its logs with the stage
func runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled before "+name)
	}

	ctx = logger.WithStage(ctx, name)
	ctx, span := observability.StartSpan(ctx, "pipeline."+name)
	timer := metrics.NewTimer(name)

	err := fn(ctx)

	timer.ObserveDuration()
	observability.EndSpan(span, err)
	return err
}
