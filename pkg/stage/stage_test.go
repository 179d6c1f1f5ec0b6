package stage

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/jsonpipe/pkg/compression"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/keys"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
)

func numbered(rows int) *models.Dataset {
	ds := models.NewDataset([]string{"id", "name"})
	for i := 0; i < rows; i++ {
		ds.Data["id"] = append(ds.Data["id"], int64(i))
		ds.Data["name"] = append(ds.Data["name"], fmt.Sprintf("row-%d", i))
	}
	return ds
}

func TestPartition_Sizes(t *testing.T) {
	tests := []struct {
		rows, nodes int
		want        []int
	}{
		{rows: 10, nodes: 3, want: []int{4, 3, 3}},
		{rows: 9, nodes: 3, want: []int{3, 3, 3}},
		{rows: 2, nodes: 4, want: []int{1, 1, 0, 0}},
		{rows: 0, nodes: 2, want: []int{0, 0}},
		{rows: 5, nodes: 1, want: []int{5}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_rows_%d_nodes", tt.rows, tt.nodes), func(t *testing.T) {
			chunks, err := Partition(numbered(tt.rows), tt.nodes)
			require.NoError(t, err)

			got := make([]int, len(chunks))
			for i, c := range chunks {
				got[i] = c.NumRows()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartition_PreservesOrderProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		rows := r.Intn(100)
		nodes := r.Intn(12) + 1

		chunks, err := Partition(numbered(rows), nodes)
		require.NoError(t, err)
		require.Len(t, chunks, nodes)

		var ids []interface{}
		min, max := rows, 0
		for _, c := range chunks {
			ids = append(ids, c.Column("id")...)
			if n := c.NumRows(); n < min {
				min = n
			}
			if n := c.NumRows(); n > max {
				max = n
			}
		}
		assert.LessOrEqual(t, max-min, 1)
		assert.Equal(t, numbered(rows).Column("id"), ids)
	}
}

func TestPartition_InvalidNodes(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Partition(numbered(3), n)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "hello", want: "hello"},
		{name: "true", in: true, want: "true"},
		{name: "false", in: false, want: "false"},
		{name: "int64", in: int64(-42), want: "-42"},
		{name: "float", in: 2.5, want: "2.5"},
		{name: "integral float", in: 3.0, want: "3"},
		{name: "small float", in: 0.1, want: "0.1"},
		{name: "sequence", in: []interface{}{"a", int64(1), nil}, want: `["a",1,null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeCSV(t *testing.T) {
	ds := models.NewDataset([]string{"a_b", "note", "tags"})
	ds.Data["a_b"] = []interface{}{int64(1), nil}
	ds.Data["note"] = []interface{}{"x,y", `say "hi"`}
	ds.Data["tags"] = []interface{}{nil, []interface{}{"p", "q"}}

	body, err := EncodeCSV(ds)
	require.NoError(t, err)

	want := "a_b,note,tags\n" +
		"1,\"x,y\",\n" +
		",\"say \"\"hi\"\"\",\"[\"\"p\"\",\"\"q\"\"]\"\n"
	assert.Equal(t, want, string(body))

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"a_b", "note", "tags"},
		{"1", "x,y", ""},
		{"", `say "hi"`, `["p","q"]`},
	}, records)
}

func TestStage_WritesEveryChunk(t *testing.T) {
	store := objectstore.NewMemoryStore()
	s := New(store,
		WithNamer(keys.NewHashNamer("run", 6)),
		WithLogger(zaptest.NewLogger(t)))

	staged, err := s.Stage(context.Background(), numbered(5), Options{
		Bucket: "bucket",
		Nodes:  2,
	})
	require.NoError(t, err)
	require.Len(t, staged, 2)

	assert.Equal(t, 3, staged[0].Rows)
	assert.Equal(t, 2, staged[1].Rows)

	var total int
	for _, c := range staged {
		assert.True(t, strings.HasPrefix(c.Key, "staging/"), c.Key)
		assert.True(t, strings.HasSuffix(c.Key, DefaultSuffix+DefaultExtension), c.Key)

		body, opts, ok := store.Object("bucket", c.Key)
		require.True(t, ok)
		assert.Equal(t, "text/csv", opts.ContentType)
		assert.Equal(t, len(body), c.Bytes)

		lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
		assert.Equal(t, "id,name", lines[0])
		total += len(lines) - 1
	}
	assert.Equal(t, 5, total)

	first, _, _ := store.Object("bucket", staged[0].Key)
	assert.Equal(t, "id,name\n0,row-0\n1,row-1\n2,row-2\n", string(first))
}

func TestStage_KeySuffix(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{name: "default", suffix: "", want: "_chunk.csv"},
		{name: "custom", suffix: "_part", want: "_part.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := objectstore.NewMemoryStore()
			staged, err := New(store, WithLogger(zaptest.NewLogger(t))).
				Stage(context.Background(), numbered(2), Options{Bucket: "b", Nodes: 1, Suffix: tt.suffix})
			require.NoError(t, err)
			require.Len(t, staged, 1)

			key := staged[0].Key
			assert.True(t, strings.HasPrefix(key, "staging/"), key)
			assert.True(t, strings.HasSuffix(key, tt.want), key)
			assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "staging/"), tt.want), keys.DefaultPrefixLength)
		})
	}
}

func TestStage_EmptyChunksStillStaged(t *testing.T) {
	store := objectstore.NewMemoryStore()
	s := New(store, WithLogger(zaptest.NewLogger(t)))

	staged, err := s.Stage(context.Background(), numbered(1), Options{
		Bucket: "bucket",
		Folder: "tmp/stage/",
		Nodes:  3,
	})
	require.NoError(t, err)
	require.Len(t, staged, 3)
	assert.Len(t, store.Keys("bucket", "tmp/stage/"), 3)

	body, _, _ := store.Object("bucket", staged[2].Key)
	assert.Equal(t, "id,name\n", string(body))
}

func TestStage_FailedPutAborts(t *testing.T) {
	store := objectstore.NewMemoryStore()
	var failed string
	store.PutHook = func(bucket, key string) error {
		if failed == "" {
			failed = key
			return fmt.Errorf("access denied")
		}
		return nil
	}

	s := New(store, WithLogger(zaptest.NewLogger(t)), WithNamer(keys.NewHashNamer("x", 8)))
	staged, err := s.Stage(context.Background(), numbered(4), Options{
		Bucket:      "bucket",
		Nodes:       4,
		Concurrency: 1,
	})
	require.Error(t, err)
	assert.Nil(t, staged)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))

	key, ok := errors.Detail(err, "key")
	require.True(t, ok)
	assert.Equal(t, failed, key)
	assert.Contains(t, err.Error(), "access denied")
}

func TestStage_Validation(t *testing.T) {
	s := New(objectstore.NewMemoryStore(), WithLogger(zaptest.NewLogger(t)))

	_, err := s.Stage(context.Background(), numbered(2), Options{Nodes: 2})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = s.Stage(context.Background(), numbered(2), Options{Bucket: "b"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestStage_Compressed(t *testing.T) {
	store := objectstore.NewMemoryStore()
	gz, err := compression.NewCompressor(compression.Gzip, compression.Default)
	require.NoError(t, err)

	s := New(store, WithCompressor(gz), WithLogger(zaptest.NewLogger(t)))
	assert.Equal(t, compression.Gzip, s.Compression())

	staged, err := s.Stage(context.Background(), numbered(3), Options{Bucket: "b", Nodes: 1})
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.True(t, strings.HasSuffix(staged[0].Key, ".csv.gz"))

	body, opts, _ := store.Object("b", staged[0].Key)
	assert.Equal(t, "application/gzip", opts.ContentType)

	plain, err := gz.Decompress(body)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n0,row-0\n1,row-1\n2,row-2\n", string(plain))
}
