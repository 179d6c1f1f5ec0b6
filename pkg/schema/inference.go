// Package schema infers a column type for every dataset column and renders
// the CREATE TABLE statement for the destination table.
package schema

import (
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// MixedPolicy decides what happens to a column whose values have
// incompatible kinds
type MixedPolicy string

const (
	// MixedFail reports the column as a schema error
	MixedFail MixedPolicy = "fail"
	// MixedText widens the column to text
	MixedText MixedPolicy = "text"
)

// Column is one inferred destination column
type Column struct {
	Name     string
	Type     models.ColumnType
	Nullable bool
}

// kind of a single value; nulls have no kind
type kind int

const (
	kindNull kind = iota
	kindText
	kindFloat
	kindInteger
	kindBoolean
	kindOther
)

func kindOf(v interface{}) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case string, []interface{}:
		return kindText
	case float32, float64:
		return kindFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInteger
	case bool:
		return kindBoolean
	default:
		return kindOther
	}
}

// InferColumnType returns the type of a column from its values. Nulls are
// ignored and an all-null column is text. Integers alongside floats widen
// to float; any other combination of kinds is mixed.
func InferColumnType(values []interface{}) models.ColumnType {
	seen := map[kind]bool{}
	for _, v := range values {
		if k := kindOf(v); k != kindNull {
			seen[k] = true
		}
	}

	switch {
	case len(seen) == 0:
		return models.ColumnTypeText
	case seen[kindOther]:
		return models.ColumnTypeMixed
	case len(seen) == 1:
		for k := range seen {
			return typeOfKind(k)
		}
	case len(seen) == 2 && seen[kindInteger] && seen[kindFloat]:
		return models.ColumnTypeFloat
	}
	return models.ColumnTypeMixed
}

func typeOfKind(k kind) models.ColumnType {
	switch k {
	case kindFloat:
		return models.ColumnTypeFloat
	case kindInteger:
		return models.ColumnTypeInteger
	case kindBoolean:
		return models.ColumnTypeBoolean
	default:
		return models.ColumnTypeText
	}
}

// InferColumns infers every column of ds in dataset order. A mixed column is
// a schema error unless policy is MixedText.
func InferColumns(ds *models.Dataset, policy MixedPolicy) ([]Column, error) {
	cols := make([]Column, 0, len(ds.Columns))
	for _, name := range ds.Columns {
		values := ds.Column(name)
		typ := InferColumnType(values)

		if typ == models.ColumnTypeMixed {
			if policy != MixedText {
				return nil, errors.Newf(errors.ErrorTypeSchema,
					"column %s mixes incompatible value types", name).
					WithDetail("column", name).
					WithDetail("kinds", kindsIn(values))
			}
			typ = models.ColumnTypeText
		}

		cols = append(cols, Column{Name: name, Type: typ, Nullable: hasNull(values)})
	}
	return cols, nil
}

func hasNull(values []interface{}) bool {
	for _, v := range values {
		if v == nil {
			return true
		}
	}
	return false
}

func kindsIn(values []interface{}) []string {
	names := map[kind]string{
		kindText: "text", kindFloat: "float", kindInteger: "integer",
		kindBoolean: "boolean", kindOther: "other",
	}
	var out []string
	seen := map[kind]bool{}
	for _, v := range values {
		k := kindOf(v)
		if k == kindNull || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, names[k])
	}
	return out
}
