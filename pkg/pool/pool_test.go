package pool

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_ResetOnPut(t *testing.T) {
	p := New(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() },
	)

	buf := p.Get()
	buf.WriteString("dirty")
	_, inUse := p.Stats()
	assert.Equal(t, int64(1), inUse)

	p.Put(buf)
	assert.Equal(t, 0, buf.Len())

	allocated, inUse := p.Stats()
	assert.GreaterOrEqual(t, allocated, int64(1))
	assert.Equal(t, int64(0), inUse)
}

func TestInterner(t *testing.T) {
	calls := 0
	in := NewInterner(2, func(s string) string {
		calls++
		return strings.ToUpper(s)
	})

	assert.Equal(t, "A", in.Get("a"))
	assert.Equal(t, "A", in.Get("a"))
	assert.Equal(t, "B", in.Get("b"))
	assert.Equal(t, 2, calls)

	// full: computed but not stored
	assert.Equal(t, "C", in.Get("c"))
	assert.Equal(t, "C", in.Get("c"))
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, in.Len())

	hits, misses := in.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(4), misses)
}

func TestInterner_Concurrent(t *testing.T) {
	in := NewInterner(100, strings.ToLower)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "key", in.Get("KEY"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, in.Len())
}
