package objectstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

func TestListDocuments_SkipsFolderMarkersAndExcludedPrefixes(t *testing.T) {
	store := NewMemoryStore()
	store.PutString("bucket", "b.json", "{}")
	store.PutString("bucket", "a.json", "{}")
	store.PutString("bucket", "logs/", "")
	store.PutString("bucket", "logs/c.json", "{}")
	store.PutString("bucket", "staging/", "")
	store.PutString("bucket", "staging/abc123_chunk.csv", "x\n1\n")

	refs, err := ListDocuments(context.Background(), store, "bucket", "", "staging/")
	require.NoError(t, err)

	keys := make([]string, len(refs))
	for i, r := range refs {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"a.json", "b.json", "logs/c.json"}, keys)
}

func TestListDocuments_MissingBucket(t *testing.T) {
	_, err := ListDocuments(context.Background(), NewMemoryStore(), "nope", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestFolderHelpers(t *testing.T) {
	assert.Equal(t, "staging/", FolderPrefix("staging"))
	assert.Equal(t, "staging/", FolderPrefix("/staging/"))
	assert.Equal(t, "", FolderPrefix(""))
	assert.Equal(t, "staging/x.csv", JoinKey("staging", "x.csv"))
	assert.Equal(t, "x.csv", JoinKey("", "/x.csv"))
	assert.True(t, IsFolderMarker("a/b/"))
	assert.False(t, IsFolderMarker("a/b"))
}

func TestMemoryStore_Hooks(t *testing.T) {
	store := NewMemoryStore()
	store.PutHook = func(bucket, key string) error {
		if key == "bad" {
			return fmt.Errorf("access denied")
		}
		return nil
	}

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "b", "good", []byte("1"), PutOptions{ContentType: "text/csv"}))

	err := store.Put(ctx, "b", "bad", []byte("1"), PutOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
	key, _ := errors.Detail(err, "key")
	assert.Equal(t, "bad", key)

	body, opts, ok := store.Object("b", "good")
	require.True(t, ok)
	assert.Equal(t, "1", string(body))
	assert.Equal(t, "text/csv", opts.ContentType)

	_, err = store.Get(ctx, models.ObjectRef{Bucket: "b", Key: "missing"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}
