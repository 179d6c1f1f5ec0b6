package models

// ColumnType is the inferred value type of a dataset column.
type ColumnType int

const (
	// ColumnTypeText holds strings, sequences, or only nulls
	ColumnTypeText ColumnType = iota
	// ColumnTypeFloat holds floating point numbers, possibly mixed with integers
	ColumnTypeFloat
	// ColumnTypeInteger holds integral numbers only
	ColumnTypeInteger
	// ColumnTypeBoolean holds booleans only
	ColumnTypeBoolean
	// ColumnTypeMixed holds values of incompatible kinds
	ColumnTypeMixed
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeText:
		return "text"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeInteger:
		return "integer"
	case ColumnTypeBoolean:
		return "boolean"
	case ColumnTypeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}
