package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection settings for an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3 is an object-store client shared by all buckets.
type S3 struct {
	client *minio.Client
}

// NewS3 creates a client for cfg.  No request is made until a blob is read
// or written.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("objstore: S3 endpoint is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: create S3 client: %w", err)
	}
	return &S3{client: client}, nil
}

// Bucket returns a [Backend] for one bucket.
func (s *S3) Bucket(name string) Backend {
	return &s3Bucket{client: s.client, bucket: name}
}

type s3Bucket struct {
	client *minio.Client
	bucket string
}

func (b *s3Bucket) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore: get s3://%s/%s: %w", b.bucket, name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, b.bucket, name)
		}
		return nil, fmt.Errorf("objstore: read s3://%s/%s: %w", b.bucket, name, err)
	}
	return data, nil
}

func (b *s3Bucket) Put(ctx context.Context, name string, data []byte, opts PutOptions) error {
	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if putOpts.ContentType == "" {
		putOpts.ContentType = "application/octet-stream"
	}
	_, err := b.client.PutObject(ctx, b.bucket, name, bytes.NewReader(data), int64(len(data)), putOpts)
	if err != nil {
		return fmt.Errorf("objstore: put s3://%s/%s: %w", b.bucket, name, err)
	}
	return nil
}
