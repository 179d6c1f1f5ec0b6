package schema

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// DefaultVarcharLength bounds text columns
const DefaultVarcharLength = 256

// DistStyleAll replicates the whole table to every compute node. It keeps
// joins local but only suits small, dimension-sized tables: a large fact
// table loaded this way is copied in full to every node.
const DistStyleAll = "ALL"

// TypeMap maps inferred column types to destination type tokens
type TypeMap map[models.ColumnType]string

// RedshiftTypes returns the Redshift type tokens
func RedshiftTypes(varcharLength int) TypeMap {
	return TypeMap{
		models.ColumnTypeText:    fmt.Sprintf("varchar(%d)", varcharOrDefault(varcharLength)),
		models.ColumnTypeFloat:   "float",
		models.ColumnTypeInteger: "int8",
		models.ColumnTypeBoolean: "boolean",
	}
}

// SnowflakeTypes returns the Snowflake type tokens
func SnowflakeTypes(varcharLength int) TypeMap {
	return TypeMap{
		models.ColumnTypeText:    fmt.Sprintf("varchar(%d)", varcharOrDefault(varcharLength)),
		models.ColumnTypeFloat:   "float",
		models.ColumnTypeInteger: "bigint",
		models.ColumnTypeBoolean: "boolean",
	}
}

// Options controls DDL rendering
type Options struct {
	Types TypeMap
	// DistStyle is emitted as DISTSTYLE <value>; empty omits the clause
	DistStyle   string
	MixedPolicy MixedPolicy
}

// DefaultOptions renders Redshift DDL replicated to all nodes and rejects
// mixed columns
func DefaultOptions() Options {
	return Options{
		Types:       RedshiftTypes(DefaultVarcharLength),
		DistStyle:   DistStyleAll,
		MixedPolicy: MixedFail,
	}
}

// ValidDistStyle reports whether style can be rendered
func ValidDistStyle(style string) bool {
	switch strings.ToUpper(style) {
	case "", "ALL", "EVEN", "AUTO":
		return true
	}
	return false
}

// InferDDL infers the columns of ds and renders the CREATE TABLE statement
func InferDDL(ds *models.Dataset, table string, opts Options) (string, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return "", errors.New(errors.ErrorTypeValidation, "dataset has no columns")
	}
	cols, err := InferColumns(ds, opts.MixedPolicy)
	if err != nil {
		return "", err
	}
	return RenderDDL(table, cols, opts)
}

// RenderDDL renders
//
//	CREATE TABLE IF NOT EXISTS <table> (
//	  <col> <type>,
//	  ...
//	)
//	DISTSTYLE <style>;
//
// Identifiers are emitted as-is. Column order is preserved.
func RenderDDL(table string, cols []Column, opts Options) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", errors.New(errors.ErrorTypeValidation, "table name must not be empty")
	}
	if len(cols) == 0 {
		return "", errors.New(errors.ErrorTypeValidation, "at least one column is required").
			WithDetail("table", table)
	}
	if !ValidDistStyle(opts.DistStyle) {
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported dist style %q", opts.DistStyle)
	}

	types := opts.Types
	if types == nil {
		types = RedshiftTypes(DefaultVarcharLength)
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", errors.New(errors.ErrorTypeSchema, "column name must not be empty").
				WithDetail("table", table)
		}
		token, ok := types[c.Type]
		if !ok {
			return "", errors.Newf(errors.ErrorTypeSchema,
				"column %s has type %s with no destination type", c.Name, c.Type).
				WithDetail("column", c.Name)
		}
		defs = append(defs, c.Name+" "+token)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(table)
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(defs, ",\n  "))
	b.WriteString("\n)")
	if opts.DistStyle != "" {
		b.WriteString("\nDISTSTYLE ")
		b.WriteString(strings.ToUpper(opts.DistStyle))
	}
	b.WriteString(";")
	return b.String(), nil
}

func varcharOrDefault(n int) int {
	if n <= 0 {
		return DefaultVarcharLength
	}
	return n
}
