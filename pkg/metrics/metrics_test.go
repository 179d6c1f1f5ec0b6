package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDocumentsParsed_CountsByStrategy(t *testing.T) {
	before := testutil.ToFloat64(DocumentsParsed.WithLabelValues("lines"))
	DocumentsParsed.WithLabelValues("lines").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(DocumentsParsed.WithLabelValues("lines")))
}

func TestTimer_ObservesStage(t *testing.T) {
	before := testutil.CollectAndCount(StageDuration)
	d := NewTimer("metrics_test").ObserveDuration()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	assert.Equal(t, before+1, testutil.CollectAndCount(StageDuration))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", Status(nil))
	assert.Equal(t, "failure", Status(fmt.Errorf("boom")))
}
