// Package warehouse runs the create-table and bulk-copy statements that load
// staged chunks into a columnar warehouse table.
package warehouse

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is one warehouse session. Statements executed through the same Conn
// share the session.
type Conn interface {
	Exec(ctx context.Context, query string) error
	Close(ctx context.Context) error
}

// Dialect selects statement syntax and driver
type Dialect string

const (
	Redshift  Dialect = "redshift"
	Snowflake Dialect = "snowflake"
)

// ParseDialect maps a configuration value to a Dialect. Empty means Redshift.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Redshift, nil
	case Redshift, Snowflake:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported warehouse dialect: %s", s)
	}
}

// Open connects to the warehouse addressed by dsn
func Open(ctx context.Context, dialect Dialect, dsn string) (Conn, error) {
	switch dialect {
	case Redshift, "":
		c, err := OpenRedshift(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	case Snowflake:
		c, err := OpenSnowflake(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse dialect: %s", dialect)
	}
}

// duplicateTable is the SQLSTATE of CREATE TABLE on an existing relation
const duplicateTable = "42P07"

// IsAlreadyExists reports whether err says the relation already exists
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == duplicateTable
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
