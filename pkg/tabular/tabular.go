// Package tabular turns flattened records into a rectangular Dataset.
package tabular

import (
	"sort"

	"github.com/ajitpratap0/jsonpipe/pkg/flatten"
	"github.com/ajitpratap0/jsonpipe/pkg/metrics"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// Tabulate builds a Dataset whose columns are the union of the record keys in
// first-seen order (sorted within a record). A record lacking a column gets
// nil in that column.
func Tabulate(records []models.FlatRecord) *models.Dataset {
	var columns []string
	index := make(map[string]int)

	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if _, ok := index[k]; !ok {
				index[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	ds := models.NewDataset(columns)
	for _, c := range columns {
		ds.Data[c] = make([]interface{}, len(records))
	}
	for i, rec := range records {
		for k, v := range rec {
			ds.Data[k][i] = v
		}
	}

	metrics.RowsTabulated.Add(float64(len(records)))
	return ds
}

// FromDocuments flattens every document and tabulates the result
func FromDocuments(docs []models.RawDocument) *models.Dataset {
	records := make([]models.FlatRecord, len(docs))
	for i, doc := range docs {
		records[i] = flatten.Flatten(doc)
	}
	return Tabulate(records)
}

func sortedKeys(rec models.FlatRecord) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
