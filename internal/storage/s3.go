package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/metrics"
)

const (
	errLoadAWSConfig = "failed to load AWS config: %w"
	errGetObject     = "failed to get object %s: %w"
	errPutObject     = "failed to put object %s: %w"
	errListObjects   = "failed to list objects under %s: %w"
)

// S3Config configures an S3 or S3-compatible (MinIO) store
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	HTTP            HTTPClientConfig
}

// S3Store is an ObjectStore backed by an S3 bucket
type S3Store struct {
	client *s3.Client
	http   *RateLimitedHTTPClient
	bucket string
	log    *logrus.Entry
}

// NewS3Store creates an S3 store. Static credentials are used when given,
// otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config, log *logrus.Logger) (*S3Store, error) {
	httpClient := NewRateLimitedHTTPClient(cfg.HTTP, log)

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(httpClient),
		// retries happen in the HTTP client
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf(errLoadAWSConfig, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client: client,
		http:   httpClient,
		bucket: cfg.Bucket,
		log:    log.WithFields(logrus.Fields{"component": "storage", "bucket": cfg.Bucket}),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("Bucket created")
	return nil
}

// Ping checks the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Get downloads an object
func (s *S3Store) Get(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { metrics.RecordStorageRequest("get", ignoreNotFound(err), time.Since(start).Seconds()) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf(errGetObject, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf(errGetObject, key, err)
	}
	defer out.Body.Close()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf(errGetObject, key, err)
	}
	return data, nil
}

// Put uploads an object, replacing any previous version
func (s *S3Store) Put(ctx context.Context, key string, data []byte) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStorageRequest("put", err, time.Since(start).Seconds()) }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf(errPutObject, key, err)
	}
	s.log.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Debug("Object stored")
	return nil
}

// List returns every key under prefix
func (s *S3Store) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordStorageRequest("list", err, time.Since(start).Seconds()) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf(errListObjects, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Close releases idle connections
func (s *S3Store) Close() error {
	return s.http.Close()
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".json.gz"):
		return "application/gzip"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
