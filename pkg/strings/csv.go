// Package strings provides the delimited-text row builder used to serialize
// staged chunks.
package strings

import (
	"bytes"
	"io"
	"strings"
)

// CSVBuilder builds comma separated text into a buffer. Fields are quoted
// only when they contain the delimiter, a double quote or a line break.
type CSVBuilder struct {
	buf      *bytes.Buffer
	rowCount int
}

// NewCSVBuilder creates a builder writing into buf. A nil buf allocates one
// sized for the estimated rows and columns.
func NewCSVBuilder(buf *bytes.Buffer, estimatedRows, estimatedCols int) *CSVBuilder {
	if buf == nil {
		buf = bytes.NewBuffer(make([]byte, 0, estimatedRows*estimatedCols*20)) // rough 20 chars per cell
	}
	return &CSVBuilder{buf: buf}
}

// WriteHeader writes the header row
func (cb *CSVBuilder) WriteHeader(headers []string) {
	cb.writeLine(headers)
}

// WriteRow writes a data row
func (cb *CSVBuilder) WriteRow(fields []string) {
	cb.writeLine(fields)
	cb.rowCount++
}

// Rows returns the number of data rows written
func (cb *CSVBuilder) Rows() int {
	return cb.rowCount
}

// Len returns the number of bytes written
func (cb *CSVBuilder) Len() int {
	return cb.buf.Len()
}

// Bytes returns the built text. The slice aliases the builder's buffer.
func (cb *CSVBuilder) Bytes() []byte {
	return cb.buf.Bytes()
}

// WriteTo copies the built text to w
func (cb *CSVBuilder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(cb.buf.Bytes())
	return int64(n), err
}

func (cb *CSVBuilder) writeLine(fields []string) {
	for i, f := range fields {
		if i > 0 {
			cb.buf.WriteByte(',')
		}
		cb.writeCSVField(f)
	}
	cb.buf.WriteByte('\n')
}

// writeCSVField writes a single CSV field with proper escaping
func (cb *CSVBuilder) writeCSVField(field string) {
	if !strings.ContainsAny(field, ",\"\r\n") {
		cb.buf.WriteString(field)
		return
	}

	cb.buf.WriteByte('"')
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			cb.buf.WriteString(`""`) // Escape quotes
		} else {
			cb.buf.WriteByte(field[i])
		}
	}
	cb.buf.WriteByte('"')
}
