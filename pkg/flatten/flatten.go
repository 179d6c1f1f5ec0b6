// Package flatten collapses nested JSON objects into single-level records
// whose column names are the underscore-joined key paths, snake_cased.
package flatten

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/pool"
)

// Separator joins path segments into a compound column name
const Separator = "_"

// emptySegment stands in for an empty JSON key so every path segment
// contributes at least one character to the column name
const emptySegment = "_"

// columnNames caches FormatColumn for the paths seen across documents
var columnNames = pool.NewInterner(10000, FormatColumn)

// Flatten walks doc depth first and emits one column per leaf. Sequences are
// leaves and are stored as-is. Keys are visited in sorted order so that two
// paths normalizing to the same column always resolve the same way.
func Flatten(doc models.RawDocument) models.FlatRecord {
	out := make(models.FlatRecord, len(doc))
	walk(doc, "", out)
	return out
}

func walk(m map[string]interface{}, parent string, out models.FlatRecord) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		seg := k
		if seg == "" {
			seg = emptySegment
		}
		path := seg
		if parent != "" {
			path = parent + Separator + seg
		}

		if nested, ok := m[k].(map[string]interface{}); ok {
			walk(nested, path, out)
			continue
		}
		out[columnNames.Get(path)] = m[k]
	}
}

// FormatColumn converts a raw path into a column name: ':' becomes '_', an
// underscore is inserted before every uppercase ASCII letter except the
// first character, the result is lowercased, and anything outside
// [a-z0-9_] becomes '_'. The empty name becomes "_".
func FormatColumn(name string) string {
	if name == "" {
		return emptySegment
	}

	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			// ':' from namespaced keys, and anything else a warehouse
			// would need quoted.
			b.WriteByte('_')
		}
	}
	return b.String()
}
