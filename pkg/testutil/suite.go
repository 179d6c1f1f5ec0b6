package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
)

// PipelineSuite gives every test a fresh in-memory object store, a
// recording warehouse connection and a bounded context
type PipelineSuite struct {
	suite.Suite

	Store *objectstore.MemoryStore
	Conn  *RecordingConn

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *PipelineSuite) SetupSuite() {
	s.startTime = time.Now()
}

// TearDownSuite runs after all tests in the suite
func (s *PipelineSuite) TearDownSuite() {
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// SetupTest runs before each test
func (s *PipelineSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)
	s.Store = objectstore.NewMemoryStore()
	s.Conn = NewRecordingConn()
}

// TearDownTest runs after each test
func (s *PipelineSuite) TearDownTest() {
	s.cancel()
}

// Context returns the test context
func (s *PipelineSuite) Context() context.Context {
	return s.ctx
}

// IntegrationDSN returns the value of env or skips the test when it is
// unset or when running with -short
func IntegrationDSN(t *testing.T, env string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv(env)
	if dsn == "" {
		t.Skipf("%s not set", env)
	}
	return dsn
}
