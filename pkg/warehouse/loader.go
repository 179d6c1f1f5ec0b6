package warehouse

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/metrics"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/schema"
)

// SchemaOptions returns the DDL options matching dialect
func SchemaOptions(dialect Dialect, varcharLength int) schema.Options {
	opts := schema.DefaultOptions()
	switch dialect {
	case Snowflake:
		opts.Types = schema.SnowflakeTypes(varcharLength)
		opts.DistStyle = ""
	default:
		opts.Types = schema.RedshiftTypes(varcharLength)
	}
	return opts
}

// LoadOptions names the destination table and the staged chunks to copy
type LoadOptions struct {
	Table  string
	Source CopySource
}

// Statements is the pair of statements a load executes, in order
type Statements struct {
	CreateTable string
	Copy        string
}

// Loader creates the destination table and bulk-copies staged chunks into it
type Loader struct {
	conn    Conn
	dialect Dialect
	schema  schema.Options
	logger  *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithSchemaOptions overrides the DDL options of the dialect
func WithSchemaOptions(opts schema.Options) LoaderOption {
	return func(l *Loader) { l.schema = opts }
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = log }
}

// NewLoader creates a Loader executing on conn. conn may be nil when the
// loader only renders statements.
func NewLoader(conn Conn, dialect Dialect, opts ...LoaderOption) *Loader {
	l := &Loader{
		conn:    conn,
		dialect: dialect,
		schema:  SchemaOptions(dialect, schema.DefaultVarcharLength),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get()
	}
	return l
}

// Render infers the table DDL from ds and renders both statements without
// executing anything
func (l *Loader) Render(ds *models.Dataset, opts LoadOptions) (Statements, error) {
	ddl, err := schema.InferDDL(ds, opts.Table, l.schema)
	if err != nil {
		return Statements{}, err
	}
	copySQL, err := CopySQL(l.dialect, opts.Table, opts.Source)
	if err != nil {
		return Statements{}, err
	}
	return Statements{CreateTable: ddl, Copy: copySQL}, nil
}

// Load executes CREATE TABLE IF NOT EXISTS and then the COPY statement on
// the same session. An already existing table counts as success. The COPY
// is only attempted once the table exists. Driver errors are returned
// wrapped as warehouse errors and are not retried.
func (l *Loader) Load(ctx context.Context, ds *models.Dataset, opts LoadOptions) error {
	if l.conn == nil {
		return errors.New(errors.ErrorTypeValidation, "warehouse connection is nil")
	}

	stmts, err := l.Render(ds, opts)
	if err != nil {
		return err
	}
	log := logger.WithContext(ctx, l.logger).With(zap.String("table", opts.Table))

	start := time.Now()
	err = l.conn.Exec(ctx, stmts.CreateTable)
	if err != nil && IsAlreadyExists(err) {
		log.Info("table already exists")
		err = nil
	}
	metrics.StatementsExecuted.WithLabelValues("create_table", metrics.Status(err)).Inc()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWarehouse, "failed to create table").
			WithDetail("table", opts.Table).
			WithDetail("statement", "create_table")
	}
	log.Debug("table ready", zap.Duration("duration", time.Since(start)))

	start = time.Now()
	err = l.conn.Exec(ctx, stmts.Copy)
	metrics.StatementsExecuted.WithLabelValues("copy", metrics.Status(err)).Inc()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWarehouse, "bulk copy failed").
			WithDetail("table", opts.Table).
			WithDetail("statement", "copy").
			WithDetail("source", opts.Source.URL())
	}

	log.Info("bulk copy complete",
		zap.String("source", opts.Source.URL()),
		zap.Int("rows", ds.NumRows()),
		zap.Duration("duration", time.Since(start)))
	return nil
}
