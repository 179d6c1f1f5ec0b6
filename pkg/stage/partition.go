// Package stage splits a dataset into near-equal contiguous chunks and writes
// each chunk as delimited text to the staging folder of an object store,
// ready for a parallel bulk copy.
package stage

import (
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// Partition splits ds into n contiguous chunks. Sizes differ by at most one
// row and the first R mod n chunks carry the extra row. When n exceeds the
// row count the trailing chunks are empty.
func Partition(ds *models.Dataset, n int) ([]*models.Dataset, error) {
	if n <= 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "node count must be positive, got %d", n).
			WithDetail("nodes", n)
	}
	if ds == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "dataset is nil")
	}

	rows := ds.NumRows()
	base, extra := rows/n, rows%n

	chunks := make([]*models.Dataset, 0, n)
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, ds.Slice(lo, lo+size))
		lo += size
	}
	return chunks, nil
}
