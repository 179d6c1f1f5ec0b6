package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// MemoryStore is an in-process Store, used for tests and dry runs
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]memoryObject

	// PutHook, when set, runs before every Put; a non-nil error fails the put
	PutHook func(bucket, key string) error
	// GetHook, when set, runs before every Get; a non-nil error fails the get
	GetHook func(bucket, key string) error
}

type memoryObject struct {
	body []byte
	opts PutOptions
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]memoryObject)}
}

// Scheme implements Store
func (m *MemoryStore) Scheme() string { return "s3" }

// List implements Store
func (m *MemoryStore) List(_ context.Context, bucket, prefix string) ([]models.ObjectRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, errors.New(errors.ErrorTypeIO, "bucket does not exist").WithDetail("bucket", bucket)
	}

	refs := make([]models.ObjectRef, 0, len(objs))
	for key, obj := range objs {
		if strings.HasPrefix(key, prefix) {
			refs = append(refs, models.ObjectRef{Bucket: bucket, Key: key, Size: int64(len(obj.body))})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, ref models.ObjectRef) ([]byte, error) {
	if m.GetHook != nil {
		if err := m.GetHook(ref.Bucket, ref.Key); err != nil {
			return nil, ioError(err, "failed to fetch object", ref.Bucket, ref.Key)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.buckets[ref.Bucket][ref.Key]
	if !ok {
		return nil, ioError(fmt.Errorf("no such key"), "failed to fetch object", ref.Bucket, ref.Key)
	}
	return append([]byte(nil), obj.body...), nil
}

// Put implements Store
func (m *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, opts PutOptions) error {
	if m.PutHook != nil {
		if err := m.PutHook(bucket, key); err != nil {
			return ioError(err, "failed to upload object", bucket, key)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
	m.buckets[bucket][key] = memoryObject{body: append([]byte(nil), body...), opts: opts}
	return nil
}

// PutString stores body at bucket/key, creating the bucket if needed
func (m *MemoryStore) PutString(bucket, key, body string) {
	_ = m.Put(context.Background(), bucket, key, []byte(body), PutOptions{})
}

// Object returns a stored body and its options
func (m *MemoryStore) Object(bucket, key string) ([]byte, PutOptions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.buckets[bucket][key]
	return obj.body, obj.opts, ok
}

// Keys returns the sorted keys of bucket under prefix
func (m *MemoryStore) Keys(bucket, prefix string) []string {
	refs, _ := m.List(context.Background(), bucket, prefix)
	keys := make([]string, len(refs))
	for i, r := range refs {
		keys[i] = r.Key
	}
	return keys
}
