package objectstore

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

const (
	defaultRegion         = "us-east-1"
	defaultUploadPartSize = 5 * 1024 * 1024 // 5MB
)

// S3Config configures the S3 backend
type S3Config struct {
	Region string
	// Endpoint overrides the service endpoint (localstack, minio)
	Endpoint     string
	UsePathStyle bool
	// UploadConcurrency is the number of parts uploaded in parallel per object
	UploadConcurrency int
}

// S3Store implements Store on Amazon S3
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	logger   *zap.Logger
}

// NewS3Store loads the default AWS credential chain and builds the clients
func NewS3Store(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3StoreFromClient(client, cfg.UploadConcurrency, logger), nil
}

// NewS3StoreFromClient wraps an existing client
func NewS3StoreFromClient(client *s3.Client, uploadConcurrency int, logger *zap.Logger) *S3Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = defaultUploadPartSize
		if uploadConcurrency > 0 {
			u.Concurrency = uploadConcurrency
		}
	})
	return &S3Store{client: client, uploader: uploader, logger: logger}
}

// Scheme implements Store
func (s *S3Store) Scheme() string { return "s3" }

// List implements Store
func (s *S3Store) List(ctx context.Context, bucket, prefix string) ([]models.ObjectRef, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var refs []models.ObjectRef
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to list objects").
				WithDetail("bucket", bucket).
				WithDetail("prefix", prefix)
		}
		for _, obj := range page.Contents {
			refs = append(refs, models.ObjectRef{
				Bucket: bucket,
				Key:    aws.ToString(obj.Key),
				Size:   aws.ToInt64(obj.Size),
			})
		}
	}

	s.logger.Debug("listed S3 objects",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("objects", len(refs)))
	return refs, nil
}

// Get implements Store
func (s *S3Store) Get(ctx context.Context, ref models.ObjectRef) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, ioError(err, "failed to fetch object", ref.Bucket, ref.Key)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ioError(err, "failed to read object body", ref.Bucket, ref.Key)
	}
	return body, nil
}

// Put implements Store
func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(body),
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.ContentEncoding != "" {
		input.ContentEncoding = aws.String(opts.ContentEncoding)
	}

	result, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return ioError(err, "failed to upload object", bucket, key)
	}

	s.logger.Debug("object uploaded to S3",
		zap.String("location", result.Location),
		zap.Int("bytes", len(body)))
	return nil
}

func ioError(err error, msg, bucket, key string) error {
	return errors.Wrap(err, errors.ErrorTypeIO, msg).
		WithDetail("bucket", bucket).
		WithDetail("key", key)
}
