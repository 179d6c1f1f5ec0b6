package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []interface{}
		want   models.ColumnType
	}{
		{name: "strings", values: []interface{}{"a", "b"}, want: models.ColumnTypeText},
		{name: "integers", values: []interface{}{int64(1), int64(2)}, want: models.ColumnTypeInteger},
		{name: "floats", values: []interface{}{1.5, 2.0}, want: models.ColumnTypeFloat},
		{name: "booleans", values: []interface{}{true, false}, want: models.ColumnTypeBoolean},
		{name: "integers with nulls", values: []interface{}{int64(1), nil}, want: models.ColumnTypeInteger},
		{name: "integers and floats widen", values: []interface{}{int64(1), 2.5}, want: models.ColumnTypeFloat},
		{name: "all null", values: []interface{}{nil, nil}, want: models.ColumnTypeText},
		{name: "empty", values: nil, want: models.ColumnTypeText},
		{name: "sequences", values: []interface{}{[]interface{}{"x"}, "y"}, want: models.ColumnTypeText},
		{name: "string and integer", values: []interface{}{"a", int64(1)}, want: models.ColumnTypeMixed},
		{name: "boolean and float", values: []interface{}{true, 1.0}, want: models.ColumnTypeMixed},
		{name: "unknown kind", values: []interface{}{struct{}{}}, want: models.ColumnTypeMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumnType(tt.values))
		})
	}
}

func sampleDataset() *models.Dataset {
	ds := models.NewDataset([]string{"name", "score", "clicks", "active"})
	ds.Data["name"] = []interface{}{"a", nil}
	ds.Data["score"] = []interface{}{1.5, int64(2)}
	ds.Data["clicks"] = []interface{}{int64(3), int64(4)}
	ds.Data["active"] = []interface{}{true, false}
	return ds
}

func TestInferDDL_Redshift(t *testing.T) {
	ddl, err := InferDDL(sampleDataset(), "clicks_impressions", DefaultOptions())
	require.NoError(t, err)

	want := "CREATE TABLE IF NOT EXISTS clicks_impressions (\n" +
		"  name varchar(256),\n" +
		"  score float,\n" +
		"  clicks int8,\n" +
		"  active boolean\n" +
		")\n" +
		"DISTSTYLE ALL;"
	assert.Equal(t, want, ddl)
}

func TestInferDDL_Deterministic(t *testing.T) {
	ds := sampleDataset()
	first, err := InferDDL(ds, "t", DefaultOptions())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := InferDDL(ds, "t", DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestInferDDL_SnowflakeWithoutDistStyle(t *testing.T) {
	ddl, err := InferDDL(sampleDataset(), "events", Options{
		Types:       SnowflakeTypes(1024),
		MixedPolicy: MixedFail,
	})
	require.NoError(t, err)
	assert.Contains(t, ddl, "name varchar(1024)")
	assert.Contains(t, ddl, "clicks bigint")
	assert.NotContains(t, ddl, "DISTSTYLE")
	assert.True(t, len(ddl) > 0 && ddl[len(ddl)-2:] == ");")
}

func TestInferDDL_ConfigurableDistStyle(t *testing.T) {
	opts := DefaultOptions()
	opts.DistStyle = "even"
	ddl, err := InferDDL(sampleDataset(), "t", opts)
	require.NoError(t, err)
	assert.Contains(t, ddl, "\nDISTSTYLE EVEN;")

	opts.DistStyle = "KEY(id)"
	_, err = InferDDL(sampleDataset(), "t", opts)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestInferDDL_MixedColumn(t *testing.T) {
	ds := models.NewDataset([]string{"v"})
	ds.Data["v"] = []interface{}{"a", int64(1)}

	_, err := InferDDL(ds, "t", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
	col, _ := errors.Detail(err, "column")
	assert.Equal(t, "v", col)

	opts := DefaultOptions()
	opts.MixedPolicy = MixedText
	ddl, err := InferDDL(ds, "t", opts)
	require.NoError(t, err)
	assert.Contains(t, ddl, "v varchar(256)")
}

func TestInferDDL_Validation(t *testing.T) {
	_, err := InferDDL(models.NewDataset(nil), "t", DefaultOptions())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = InferDDL(sampleDataset(), "  ", DefaultOptions())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRenderDDL_MissingTypeToken(t *testing.T) {
	_, err := RenderDDL("t", []Column{{Name: "x", Type: models.ColumnTypeBoolean}}, Options{
		Types: TypeMap{models.ColumnTypeText: "varchar(10)"},
	})
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestRenderDDL_EmptyColumnName(t *testing.T) {
	_, err := RenderDDL("t", []Column{{Name: "", Type: models.ColumnTypeInteger}}, DefaultOptions())
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestInferColumns_Nullable(t *testing.T) {
	cols, err := InferColumns(sampleDataset(), MixedFail)
	require.NoError(t, err)
	require.Len(t, cols, 4)
	assert.True(t, cols[0].Nullable)
	assert.False(t, cols[2].Nullable)
}
