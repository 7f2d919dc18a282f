package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"sim-talenta-gtk-api/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore writes objects into a single bucket.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

func NewMinioStore(opts config.MinioOptions) (*MinioStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if _, _, err := net.SplitHostPort(endpoint); err != nil && opts.Port > 0 {
		endpoint = net.JoinHostPort(endpoint, strconv.Itoa(opts.Port))
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &MinioStore{
		client:   client,
		bucket:   opts.Bucket,
		endpoint: endpoint,
		useSSL:   opts.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket on first use.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *MinioStore) objectURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}
