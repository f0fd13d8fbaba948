package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeStore is an in-memory ObjectStore for tests. Presigned URLs are
// deterministic fakes embedding the object key and TTL.
type FakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// Deleted records keys passed to Delete, in order.
	Deleted []string

	// FailDeletes makes Delete return an error, for best-effort paths.
	FailDeletes bool
}

var _ ObjectStore = (*FakeStore)(nil)

// NewFakeStore creates an empty in-memory object store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// PresignUpload returns a fake upload URL.
func (f *FakeStore) PresignUpload(_ context.Context, objectKey, contentType string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://fake-storage.test/upload/%s?ct=%s&ttl=%d", objectKey, contentType, int(ttl.Seconds())), nil
}

// PresignRead returns a fake read URL.
func (f *FakeStore) PresignRead(_ context.Context, objectKey string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://fake-storage.test/read/%s?ttl=%d", objectKey, int(ttl.Seconds())), nil
}

// Delete records the key and optionally fails.
func (f *FakeStore) Delete(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, objectKey)
	if f.FailDeletes {
		return fmt.Errorf("delete %s: storage unavailable", objectKey)
	}
	delete(f.objects, objectKey)
	return nil
}

// Download returns previously uploaded bytes.
func (f *FakeStore) Download(_ context.Context, objectKey string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("get %s: not found", objectKey)
	}
	return data, nil
}

// Upload stores bytes in memory.
func (f *FakeStore) Upload(_ context.Context, objectKey string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey] = data
	f.types[objectKey] = contentType
	return nil
}

// Has reports whether an object exists.
func (f *FakeStore) Has(objectKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectKey]
	return ok
}

// ContentType returns the content type recorded for an uploaded object.
func (f *FakeStore) ContentType(objectKey string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[objectKey]
}
