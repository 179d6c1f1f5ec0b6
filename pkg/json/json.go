// Package json provides JSON decoding and encoding helpers backed by goccy/go-json
package json

import (
	"bytes"
	"errors"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/jsonpipe/pkg/pool"
)

// ErrTrailingData is returned by DecodeOne when the input holds more than one JSON value
var ErrTrailingData = errors.New("json: unexpected data after top-level value")

var bufferPool = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get()
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 4*1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// NewDecoder returns a decoder that keeps numbers as literals
func NewDecoder(r io.Reader) *gojson.Decoder {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// DecodeOne decodes data as exactly one JSON value. Numbers are normalized
// with NormalizeNumbers. Anything but whitespace after the value is an error.
func DecodeOne(data []byte) (interface{}, error) {
	dec := NewDecoder(bytes.NewReader(data))

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var extra interface{}
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, ErrTrailingData
	}

	return NormalizeNumbers(v), nil
}

// NormalizeNumbers walks v and replaces number literals with int64 when the
// literal is integral and fits, or float64 otherwise.
func NormalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = NormalizeNumbers(child)
		}
		return t
	case []interface{}:
		for i, child := range t {
			t[i] = NormalizeNumbers(child)
		}
		return t
	case gojson.Number:
		lit := t.String()
		if !strings.ContainsAny(lit, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return lit
	default:
		return v
	}
}

// Marshal encodes v without HTML escaping
func Marshal(v interface{}) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	out := bytes.TrimRight(buf.Bytes(), "\n")
	result := make([]byte, len(out))
	copy(result, out)
	return result, nil
}
