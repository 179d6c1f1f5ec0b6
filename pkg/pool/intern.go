package pool

import (
	"sync"
	"sync/atomic"
)

// Interner memoizes a string transform. Once maxSize entries are cached new
// inputs are transformed on every call without being stored.
type Interner struct {
	mu        sync.RWMutex
	values    map[string]string
	transform func(string) string
	maxSize   int
	hits      int64
	misses    int64
}

// NewInterner caches up to maxSize results of transform
func NewInterner(maxSize int, transform func(string) string) *Interner {
	return &Interner{
		values:    make(map[string]string, 256),
		transform: transform,
		maxSize:   maxSize,
	}
}

// Get returns transform(s), from the cache when possible
func (in *Interner) Get(s string) string {
	in.mu.RLock()
	v, ok := in.values[s]
	in.mu.RUnlock()
	if ok {
		atomic.AddInt64(&in.hits, 1)
		return v
	}

	atomic.AddInt64(&in.misses, 1)
	v = in.transform(s)

	in.mu.Lock()
	if len(in.values) < in.maxSize {
		in.values[s] = v
	}
	in.mu.Unlock()
	return v
}

// Len returns the number of cached entries
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.values)
}

// Stats returns cache hits and misses
func (in *Interner) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&in.hits), atomic.LoadInt64(&in.misses)
}
