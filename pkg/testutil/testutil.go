// Package testutil provides testing utilities for jsonpipe
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/jsonpipe/pkg/json"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// RecordingConn is a warehouse connection that records every statement.
// ExecHook, when set, decides the result of each statement.
type RecordingConn struct {
	mu         sync.Mutex
	statements []string
	closed     int

	ExecHook func(query string) error
}

// NewRecordingConn returns a RecordingConn on which every statement succeeds
func NewRecordingConn() *RecordingConn {
	return &RecordingConn{}
}

// FailOn makes every statement starting with prefix fail with err
func (c *RecordingConn) FailOn(prefix string, err error) *RecordingConn {
	c.ExecHook = func(query string) error {
		if strings.HasPrefix(query, prefix) {
			return err
		}
		return nil
	}
	return c
}

// Exec records query and returns the hook result
func (c *RecordingConn) Exec(_ context.Context, query string) error {
	c.mu.Lock()
	c.statements = append(c.statements, query)
	hook := c.ExecHook
	c.mu.Unlock()

	if hook != nil {
		return hook(query)
	}
	return nil
}

// Close records the close
func (c *RecordingConn) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

// Statements returns the executed statements in order
func (c *RecordingConn) Statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.statements...)
}

// Closed returns how many times Close was called
func (c *RecordingConn) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// PutJSONLines writes docs to bucket/key as newline-delimited JSON
func PutJSONLines(t *testing.T, store *objectstore.MemoryStore, bucket, key string, docs ...interface{}) {
	t.Helper()

	lines := make([]string, len(docs))
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal fixture %s[%d]: %v", key, i, err)
		}
		lines[i] = string(b)
	}
	store.PutString(bucket, key, strings.Join(lines, "\n"))
}

// CreateTestObjects writes numObjects newline-delimited objects of
// docsPerObject documents each under prefix and returns their keys
func CreateTestObjects(t *testing.T, store *objectstore.MemoryStore, bucket, prefix string, numObjects, docsPerObject int) []string {
	t.Helper()

	keys := make([]string, 0, numObjects)
	for i := 0; i < numObjects; i++ {
		key := fmt.Sprintf("%s%03d.json", prefix, i)
		docs := make([]interface{}, docsPerObject)
		for j := range docs {
			docs[j] = map[string]interface{}{
				"id":   i*docsPerObject + j,
				"user": map[string]interface{}{"name": fmt.Sprintf("user_%d", j)},
				"ok":   j%2 == 0,
			}
		}
		PutJSONLines(t, store, bucket, key, docs...)
		keys = append(keys, key)
	}
	return keys
}
