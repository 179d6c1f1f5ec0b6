// Package objectstore is the object storage boundary of the pipeline: list
// the objects of a bucket, fetch a body, and put a body at a key. S3, GCS
// and in-memory backends are provided.
package objectstore

import (
	"context"
	"sort"
	"strings"

	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// PutOptions carries object metadata for Put
type PutOptions struct {
	ContentType     string
	ContentEncoding string
	Metadata        map[string]string
}

// Store is the set of object storage primitives the pipeline consumes.
// Failures are returned as io errors carrying the bucket and key.
type Store interface {
	// Scheme is the URL scheme a warehouse uses to address this store (s3, gcs)
	Scheme() string
	List(ctx context.Context, bucket, prefix string) ([]models.ObjectRef, error)
	Get(ctx context.Context, ref models.ObjectRef) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error
}

// ListDocuments lists bucket/prefix through s, dropping folder markers (keys
// ending in '/') and every key under one of the excluded prefixes. The result
// is sorted by key.
func ListDocuments(ctx context.Context, s Store, bucket, prefix string, exclude ...string) ([]models.ObjectRef, error) {
	refs, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	out := refs[:0]
	for _, ref := range refs {
		if IsFolderMarker(ref.Key) || hasAnyPrefix(ref.Key, exclude) {
			continue
		}
		out = append(out, ref)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// IsFolderMarker reports whether key is a zero-byte directory placeholder
func IsFolderMarker(key string) bool {
	return strings.HasSuffix(key, "/")
}

// FolderPrefix normalizes a folder name to the key prefix of its contents
func FolderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}

// JoinKey places name inside folder
func JoinKey(folder, name string) string {
	return FolderPrefix(folder) + strings.TrimLeft(name, "/")
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
