// Package metrics exposes Prometheus collectors for every pipeline stage.
//
// Collectors register with the default registry on import, so a process
// serving promhttp.Handler() publishes them without further wiring:
//
//	metrics.ObjectsRead.WithLabelValues("s3").Inc()
//	timer := metrics.NewTimer("stage")
//	defer timer.ObserveDuration()
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jsonpipe"

var (
	// ObjectsRead counts objects fetched from the source bucket.
	// Labels: scheme (s3/gcs)
	ObjectsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_read_total",
			Help:      "Total number of source objects fetched",
		},
		[]string{"scheme"},
	)

	// DocumentsParsed counts JSON documents by the parse strategy that produced them.
	// Labels: strategy (whole, array, lines)
	DocumentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_parsed_total",
			Help:      "Total number of JSON documents parsed, by strategy",
		},
		[]string{"strategy"},
	)

	// RowsTabulated counts rows in tabulated datasets
	RowsTabulated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_tabulated_total",
			Help:      "Total number of rows placed into datasets",
		},
	)

	// ChunksStaged counts chunks written to the staging folder
	ChunksStaged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_staged_total",
			Help:      "Total number of staged chunk files",
		},
	)

	// BytesStaged counts bytes written to the staging folder
	BytesStaged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_staged_total",
			Help:      "Total number of bytes written to staged chunk files",
		},
	)

	// StatementsExecuted counts warehouse statements.
	// Labels: kind (create_table, copy), status (success, failure)
	StatementsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_executed_total",
			Help:      "Total number of warehouse statements executed",
		},
		[]string{"kind", "status"},
	)

	// StageDuration tracks the wall time of each pipeline stage in seconds.
	// Labels: stage (list, read, tabulate, stage, load)
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms .. ~43min
		},
		[]string{"stage"},
	)

	// RunsTotal counts pipeline runs by outcome.
	// Labels: status (success, failure)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"},
	)
)

// Timer measures one stage and records it in StageDuration
type Timer struct {
	stage string
	start time.Time
}

// NewTimer starts timing stage
func NewTimer(stage string) *Timer {
	return &Timer{stage: stage, start: time.Now()}
}

// ObserveDuration records the elapsed time and returns it
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	StageDuration.WithLabelValues(t.stage).Observe(d.Seconds())
	return d
}

// Status maps an error to a status label value
func Status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
