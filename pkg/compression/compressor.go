// Package compression encodes staged chunk bodies. Both warehouses read
// gzip and zstandard CSV directly, so a compressed chunk needs no extra
// load step beyond a keyword in the COPY statement.
package compression

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ajitpratap0/jsonpipe/pkg/pool"
)

// Algorithm names a chunk encoding
type Algorithm string

const (
	// None stores chunks as plain text
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
)

// Level controls the speed/ratio trade-off
type Level int

const (
	Fastest Level = 1
	Default Level = 5
	Best    Level = 9
)

// Compressor compresses and decompresses whole chunk bodies. Implementations
// are safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Algorithm() Algorithm
	// Extension is appended to staged keys (".gz"); empty for None
	Extension() string
	// ContentType is the media type of an encoded body
	ContentType() string
}

// ParseAlgorithm maps a configuration value to an Algorithm. Empty means None.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "", None:
		return None, nil
	case Gzip, Zstd:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", s)
	}
}

// NewCompressor returns the compressor for algorithm at level
func NewCompressor(algorithm Algorithm, level Level) (Compressor, error) {
	switch algorithm {
	case "", None:
		return noneCompressor{}, nil
	case Gzip:
		return newGzipCompressor(level), nil
	case Zstd:
		return newZstdCompressor(level), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

type noneCompressor struct{}

func (noneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (noneCompressor) Algorithm() Algorithm                   { return None }
func (noneCompressor) Extension() string                      { return "" }
func (noneCompressor) ContentType() string                    { return "text/csv" }

type gzipCompressor struct {
	writers *pool.Pool[*gzip.Writer]
	readers *pool.Pool[*gzip.Reader]
}

func newGzipCompressor(level Level) *gzipCompressor {
	gzLevel := mapGzipLevel(level)
	return &gzipCompressor{
		writers: pool.New(func() *gzip.Writer {
			w, _ := gzip.NewWriterLevel(io.Discard, gzLevel)
			return w
		}, nil),
		readers: pool.New(func() *gzip.Reader { return new(gzip.Reader) }, nil),
	}
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(data)/2))

	w := gc.writers.Get()
	defer gc.writers.Put(w)
	w.Reset(out)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readers.Get()
	defer gc.readers.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (gc *gzipCompressor) Algorithm() Algorithm { return Gzip }
func (gc *gzipCompressor) Extension() string    { return ".gz" }
func (gc *gzipCompressor) ContentType() string  { return "application/gzip" }

type zstdCompressor struct {
	encoders *pool.Pool[*zstd.Encoder]
	decoders *pool.Pool[*zstd.Decoder]
}

func newZstdCompressor(level Level) *zstdCompressor {
	zLevel := mapZstdLevel(level)
	return &zstdCompressor{
		encoders: pool.New(func() *zstd.Encoder {
			enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zLevel))
			return enc
		}, nil),
		decoders: pool.New(func() *zstd.Decoder {
			dec, _ := zstd.NewReader(nil)
			return dec
		}, nil),
	}
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoders.Get()
	defer zc.encoders.Put(enc)
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoders.Get()
	defer zc.decoders.Put(dec)
	return dec.DecodeAll(data, nil)
}

func (zc *zstdCompressor) Algorithm() Algorithm { return Zstd }
func (zc *zstdCompressor) Extension() string    { return ".zst" }
func (zc *zstdCompressor) ContentType() string  { return "application/zstd" }

func mapGzipLevel(level Level) int {
	switch {
	case level <= Fastest:
		return gzip.BestSpeed
	case level >= Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch {
	case level <= Fastest:
		return zstd.SpeedFastest
	case level >= Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
