package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3-compatible object storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore implements ObjectStore against any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore creates an object store client from config.
func NewMinioStore(cfg Config, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (m *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	if m.logger != nil {
		m.logger.Info("created storage bucket", "bucket", m.bucket)
	}
	return nil
}

// PresignUpload returns a presigned PUT URL. The content type is signed
// into the request so the uploader cannot substitute another type.
func (m *MinioStore) PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := m.client.PresignHeader(ctx, http.MethodPut, m.bucket, objectKey, ttl, url.Values{}, headers)
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", objectKey, err)
	}
	return u.String(), nil
}

// PresignRead returns a presigned GET URL.
func (m *MinioStore) PresignRead(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign read for %s: %w", objectKey, err)
	}
	return u.String(), nil
}

// Delete removes an object. Failures are returned to the caller, which
// is expected to log and continue.
func (m *MinioStore) Delete(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectKey, err)
	}
	return nil
}

// Download fetches an object's bytes.
func (m *MinioStore) Download(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objectKey, err)
	}
	return data, nil
}

// Upload writes an object directly.
func (m *MinioStore) Upload(ctx context.Context, objectKey string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", objectKey, err)
	}
	return nil
}
