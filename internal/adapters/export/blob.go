package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const csvContentType = "text/csv"

// BlobSink stores an exported file under a key.
type BlobSink interface {
	Put(ctx context.Context, key string, data []byte) error
	Name() string
}

// Key builds <prefix>/<runID>/<file>. An empty prefix is left out.
func Key(prefix, runID, file string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	return path.Join(append(parts, runID, file)...)
}

// LocalSink writes blobs below a directory.
type LocalSink struct {
	BaseDir string
}

// NewLocalSink creates a LocalSink rooted at baseDir.
func NewLocalSink(baseDir string) *LocalSink {
	return &LocalSink{BaseDir: baseDir}
}

// Name implements BlobSink.
func (s *LocalSink) Name() string { return "local" }

// Put implements BlobSink.
func (s *LocalSink) Put(_ context.Context, key string, data []byte) error {
	p := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// S3Config holds configuration for the S3 sink.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // set for S3-compatible stores such as MinIO
	AccessKey string
	SecretKey string
}

// s3Putter is the part of *s3.Client the sink needs.
type s3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink writes blobs to an S3 bucket.
type S3Sink struct {
	client s3Putter
	bucket string
}

// NewS3Sink creates an S3-backed sink.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &S3Sink{client: s3.NewFromConfig(awsCfg, s3Opts...), bucket: cfg.Bucket}, nil
}

// Name implements BlobSink.
func (s *S3Sink) Name() string { return "s3" }

// Put implements BlobSink.
func (s *S3Sink) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// GCSSink writes blobs to a Google Cloud Storage bucket.
type GCSSink struct {
	client *gcs.Client
	bucket string
}

// NewGCSSink creates a GCS-backed sink using Application Default Credentials.
func NewGCSSink(ctx context.Context, bucket string) (*GCSSink, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket}, nil
}

// Name implements BlobSink.
func (s *GCSSink) Name() string { return "gcs" }

// Put implements BlobSink.
func (s *GCSSink) Put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = csvContentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

// Close releases the GCS client.
func (s *GCSSink) Close() error { return s.client.Close() }

// BlobConfig selects and configures one blob backend.
type BlobConfig struct {
	Backend  string // local, s3 or gcs
	LocalDir string
	Bucket   string
	S3       S3Config
}

// NewBlobSink builds the sink named by cfg.Backend.
func NewBlobSink(ctx context.Context, cfg BlobConfig) (BlobSink, error) {
	switch strings.ToLower(cfg.Backend) {
	case "local", "":
		return NewLocalSink(cfg.LocalDir), nil
	case "s3":
		s3cfg := cfg.S3
		if s3cfg.Bucket == "" {
			s3cfg.Bucket = cfg.Bucket
		}
		return NewS3Sink(ctx, s3cfg)
	case "gcs":
		return NewGCSSink(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
