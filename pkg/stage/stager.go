package stage

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/jsonpipe/pkg/compression"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/keys"
	"github.com/ajitpratap0/jsonpipe/pkg/logger"
	"github.com/ajitpratap0/jsonpipe/pkg/metrics"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/objectstore"
)

const (
	DefaultFolder      = "staging"
	DefaultSuffix      = "_chunk"
	DefaultExtension   = ".csv"
	DefaultConcurrency = 8
)

// Options describes where and how many chunks to stage
type Options struct {
	Bucket    string
	Folder    string
	Suffix    string
	Extension string
	// Nodes is the number of chunks, normally the warehouse slice count
	Nodes int
	// Concurrency bounds simultaneous uploads. Zero means DefaultConcurrency.
	Concurrency int
}

func (o *Options) applyDefaults() {
	if o.Folder == "" {
		o.Folder = DefaultFolder
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
}

// Stager partitions datasets and uploads the chunks
type Stager struct {
	store      objectstore.Store
	namer      keys.Namer
	compressor compression.Compressor
	logger     *zap.Logger
}

// Option configures a Stager
type Option func(*Stager)

// WithNamer sets the key naming strategy
func WithNamer(n keys.Namer) Option {
	return func(s *Stager) { s.namer = n }
}

// WithCompressor encodes every chunk body with c
func WithCompressor(c compression.Compressor) Option {
	return func(s *Stager) { s.compressor = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Stager) { s.logger = l }
}

// New creates a Stager writing to store. Keys default to random six
// character prefixes and chunks are uncompressed.
func New(store objectstore.Store, opts ...Option) *Stager {
	s := &Stager{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.namer == nil {
		s.namer = keys.NewRandomNamer(keys.DefaultPrefixLength)
	}
	if s.compressor == nil {
		s.compressor, _ = compression.NewCompressor(compression.None, compression.Default)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Compression reports the chunk encoding
func (s *Stager) Compression() compression.Algorithm {
	return s.compressor.Algorithm()
}

// Stage partitions ds into opts.Nodes chunks and puts each under
// <Folder>/<key>. All chunks are written or the call fails: the first
// failed put cancels the remaining uploads and is returned as an io error
// naming the key.
func (s *Stager) Stage(ctx context.Context, ds *models.Dataset, opts Options) ([]models.StagedChunk, error) {
	opts.applyDefaults()
	if opts.Bucket == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "staging bucket must not be empty")
	}

	chunks, err := Partition(ds, opts.Nodes)
	if err != nil {
		return nil, err
	}

	names := s.namer.Generate(len(chunks), opts.Suffix, opts.Extension+s.compressor.Extension())
	log := logger.WithContext(ctx, s.logger)
	start := time.Now()

	staged := make([]models.StagedChunk, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		key := objectstore.JoinKey(opts.Folder, names[i])
		g.Go(func() error {
			body, err := s.encode(chunk)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode chunk").
					WithDetail("key", key)
			}

			if err := s.store.Put(gctx, opts.Bucket, key, body, s.putOptions()); err != nil {
				return errors.Wrap(err, errors.ErrorTypeIO, "failed to stage chunk").
					WithDetail("bucket", opts.Bucket).
					WithDetail("key", key)
			}

			staged[i] = models.StagedChunk{
				Bucket: opts.Bucket,
				Key:    key,
				Rows:   chunk.NumRows(),
				Bytes:  len(body),
			}
			metrics.ChunksStaged.Inc()
			metrics.BytesStaged.Add(float64(len(body)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("staging aborted", zap.Error(err))
		return nil, err
	}

	log.Info("staged chunks",
		zap.String("bucket", opts.Bucket),
		zap.String("folder", opts.Folder),
		zap.Int("chunks", len(staged)),
		zap.Int("rows", ds.NumRows()),
		zap.Duration("duration", time.Since(start)))

	return staged, nil
}

func (s *Stager) encode(chunk *models.Dataset) ([]byte, error) {
	body, err := EncodeCSV(chunk)
	if err != nil {
		return nil, err
	}
	return s.compressor.Compress(body)
}

func (s *Stager) putOptions() objectstore.PutOptions {
	return objectstore.PutOptions{ContentType: s.compressor.ContentType()}
}
