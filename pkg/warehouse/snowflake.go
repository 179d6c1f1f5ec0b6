package warehouse

import (
	"context"
	"database/sql"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
)

// SnowflakeConn pins one connection of a database/sql pool so consecutive
// statements run in the same Snowflake session.
type SnowflakeConn struct {
	db   *sql.DB
	conn *sql.Conn
}

// OpenSnowflake connects with a gosnowflake DSN
// (user:password@account/database/schema?warehouse=wh&role=role)
func OpenSnowflake(ctx context.Context, dsn string) (*SnowflakeConn, error) {
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid snowflake connection string")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeWarehouse, "failed to ping snowflake")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeWarehouse, "failed to open snowflake session")
	}
	return &SnowflakeConn{db: db, conn: conn}, nil
}

// Exec implements Conn
func (c *SnowflakeConn) Exec(ctx context.Context, query string) error {
	_, err := c.conn.ExecContext(ctx, query)
	return err
}

// Close implements Conn
func (c *SnowflakeConn) Close(_ context.Context) error {
	connErr := c.conn.Close()
	if err := c.db.Close(); err != nil {
		return err
	}
	return connErr
}
