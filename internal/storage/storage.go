// Package storage provides presigned-URL access to the object store
// holding audio files and cover art.
package storage

import (
	"context"
	"time"
)

// Default URL validity periods. Audio URLs are deliberately short-lived:
// they are re-issued per chapter load rather than cached, which bounds
// exposure if a URL leaks.
const (
	AudioReadTTL = 300 * time.Second
	CoverReadTTL = 3600 * time.Second
	UploadTTL    = 3600 * time.Second

	AudioKeyPrefix = "audio"
	CoverKeyPrefix = "covers"
)

// ObjectStore is the object-storage contract consumed by the services.
// Implementations must treat Delete as best-effort; callers log failures
// rather than failing the surrounding operation.
type ObjectStore interface {
	// PresignUpload returns a time-limited URL for uploading an object
	// with the given content type.
	PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error)

	// PresignRead returns a time-limited URL for reading an object.
	PresignRead(ctx context.Context, objectKey string, ttl time.Duration) (string, error)

	// Delete removes an object.
	Delete(ctx context.Context, objectKey string) error

	// Download fetches an object's bytes. Used for cover processing.
	Download(ctx context.Context, objectKey string) ([]byte, error)

	// Upload writes an object directly. Used for generated cover variants.
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) error
}
