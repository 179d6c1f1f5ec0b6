package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
)

// RedshiftConn is a single pgx connection. Redshift speaks the postgres wire
// protocol but not every statement supports the extended protocol, so all
// statements go through the simple protocol.
type RedshiftConn struct {
	conn *pgx.Conn
}

// OpenRedshift connects with a postgres connection string or URL
func OpenRedshift(ctx context.Context, dsn string) (*RedshiftConn, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid redshift connection string")
	}
	cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeWarehouse, "failed to connect to redshift").
			WithDetail("host", cfg.Host)
	}
	return &RedshiftConn{conn: conn}, nil
}

// Exec implements Conn. Each statement commits on success.
func (c *RedshiftConn) Exec(ctx context.Context, query string) error {
	_, err := c.conn.Exec(ctx, query)
	return err
}

// Close implements Conn
func (c *RedshiftConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
