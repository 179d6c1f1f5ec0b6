// Package reader fetches JSON objects from object storage and splits each
// body into documents, tolerating newline-delimited bodies that lack a
// surrounding array.
package reader

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/metrics"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
)

const defaultConcurrency = 8

// Result is the outcome of reading one object
type Result struct {
	Ref       models.ObjectRef
	Strategy  Strategy
	Documents []models.RawDocument
}

// Reader fetches and parses objects
type Reader struct {
	store       objectstore.Store
	concurrency int
	logger      *zap.Logger
}

// Option configures a Reader
type Option func(*Reader)

// WithConcurrency bounds the number of objects fetched at once
func WithConcurrency(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reader over store
func New(store objectstore.Store, opts ...Option) *Reader {
	r := &Reader{
		store:       store,
		concurrency: defaultConcurrency,
		logger:      logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the documents of every object in refs, ordered by object and
// then by position within the object.
func (r *Reader) Read(ctx context.Context, refs []models.ObjectRef) ([]models.RawDocument, error) {
	results, err := r.ReadObjects(ctx, refs)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, res := range results {
		total += len(res.Documents)
	}
	docs := make([]models.RawDocument, 0, total)
	for _, res := range results {
		docs = append(docs, res.Documents...)
	}
	return docs, nil
}

// ReadObjects fetches and parses refs concurrently. Results are in the same
// order as refs. The first failure cancels outstanding fetches.
func (r *Reader) ReadObjects(ctx context.Context, refs []models.ObjectRef) ([]Result, error) {
	results := make([]Result, len(refs))
	log := logger.WithContext(ctx, r.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			res, err := r.readObject(gctx, ref)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := 0
	for _, res := range results {
		docs += len(res.Documents)
	}
	log.Info("objects read",
		zap.Int("objects", len(refs)),
		zap.Int("documents", docs))
	return results, nil
}

func (r *Reader) readObject(ctx context.Context, ref models.ObjectRef) (Result, error) {
	start := time.Now()

	body, err := r.store.Get(ctx, ref)
	if err != nil {
		return Result{}, err
	}
	metrics.ObjectsRead.WithLabelValues(r.store.Scheme()).Inc()

	docs, strategy, err := Parse(body)
	if err != nil {
		e := errors.Wrap(err, errors.ErrorTypeParse, "object is not valid JSON").
			WithDetail("bucket", ref.Bucket).
			WithDetail("key", ref.Key).
			WithDetail("strategy", string(strategy))
		if line, ok := errors.Detail(err, "line"); ok {
			e = e.WithDetail("line", line)
		}
		return Result{}, e
	}
	metrics.DocumentsParsed.WithLabelValues(string(strategy)).Add(float64(len(docs)))

	r.logger.Debug("object parsed",
		zap.String("key", ref.Key),
		zap.String("strategy", string(strategy)),
		zap.Int("documents", len(docs)),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))

	return Result{Ref: ref, Strategy: strategy, Documents: docs}, nil
}
