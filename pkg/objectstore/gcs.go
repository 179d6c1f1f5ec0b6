package objectstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// GCSConfig configures the Google Cloud Storage backend
type GCSConfig struct {
	// CredentialsFile is a service account key file; empty uses application default credentials
	CredentialsFile string
	Endpoint        string
}

// GCSStore implements Store on Google Cloud Storage
type GCSStore struct {
	client *storage.Client
	logger *zap.Logger
}

// NewGCSStore creates the storage client
func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *zap.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}
	return &GCSStore{client: client, logger: logger}, nil
}

// Scheme implements Store
func (s *GCSStore) Scheme() string { return "gcs" }

// List implements Store
func (s *GCSStore) List(ctx context.Context, bucket, prefix string) ([]models.ObjectRef, error) {
	var refs []models.ObjectRef
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to list objects").
				WithDetail("bucket", bucket).
				WithDetail("prefix", prefix)
		}
		refs = append(refs, models.ObjectRef{Bucket: bucket, Key: attrs.Name, Size: attrs.Size})
	}

	s.logger.Debug("listed GCS objects",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("objects", len(refs)))
	return refs, nil
}

// Get implements Store
func (s *GCSStore) Get(ctx context.Context, ref models.ObjectRef) ([]byte, error) {
	rc, err := s.client.Bucket(ref.Bucket).Object(ref.Key).NewReader(ctx)
	if err != nil {
		return nil, ioError(err, "failed to fetch object", ref.Bucket, ref.Key)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, ioError(err, "failed to read object body", ref.Bucket, ref.Key)
	}
	return body, nil
}

// Put implements Store
func (s *GCSStore) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.ContentEncoding = opts.ContentEncoding
	w.Metadata = opts.Metadata

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return ioError(err, "failed to upload object", bucket, key)
	}
	if err := w.Close(); err != nil {
		return ioError(err, "failed to finalize object upload", bucket, key)
	}
	return nil
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
