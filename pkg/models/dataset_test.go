package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataset_SliceAndRow(t *testing.T) {
	ds := NewDataset([]string{"x", "y"})
	ds.Data["x"] = []interface{}{int64(1), int64(2), int64(3)}
	ds.Data["y"] = []interface{}{"a", nil, "c"}

	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, []interface{}{int64(2), nil}, ds.Row(1))

	s := ds.Slice(1, 3)
	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, []string{"x", "y"}, s.Columns)
	assert.Equal(t, []interface{}{int64(3), "c"}, s.Row(1))
}

func TestDataset_Empty(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.NumRows())
	assert.Equal(t, 0, NewDataset(nil).NumRows())
}

func TestColumnType_String(t *testing.T) {
	assert.Equal(t, "integer", ColumnTypeInteger.String())
	assert.Equal(t, "mixed", ColumnTypeMixed.String())
	assert.Equal(t, "unknown", ColumnType(42).String())
}
