package models

// Dataset is a rectangular table: ordered column names and, for each column,
// values aligned by row index. Missing values are nil.
type Dataset struct {
	Columns []string
	Data    map[string][]interface{}
}

// NewDataset returns an empty dataset with the given columns.
func NewDataset(columns []string) *Dataset {
	ds := &Dataset{
		Columns: append([]string(nil), columns...),
		Data:    make(map[string][]interface{}, len(columns)),
	}
	for _, c := range columns {
		ds.Data[c] = nil
	}
	return ds
}

// NumRows returns the number of rows. All columns have the same length.
func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Data[d.Columns[0]])
}

// Row returns the values of row i in column order.
func (d *Dataset) Row(i int) []interface{} {
	row := make([]interface{}, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = d.Data[c][i]
	}
	return row
}

// Column returns the values of the named column, or nil if it does not exist.
func (d *Dataset) Column(name string) []interface{} {
	return d.Data[name]
}

// Slice returns rows [lo, hi) as a new dataset sharing the column order.
// The value slices alias the receiver's storage.
func (d *Dataset) Slice(lo, hi int) *Dataset {
	out := &Dataset{
		Columns: d.Columns,
		Data:    make(map[string][]interface{}, len(d.Columns)),
	}
	for _, c := range d.Columns {
		out.Data[c] = d.Data[c][lo:hi:hi]
	}
	return out
}
