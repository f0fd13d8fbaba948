package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/audioshelfapp/audioshelf-server/internal/config"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
)

// ProvideObjectStore provides the S3-compatible object store for audio
// files and cover art.
func ProvideObjectStore(i do.Injector) (*storage.MinioStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	objects, err := storage.NewMinioStore(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	log.Info("Object storage ready",
		"endpoint", cfg.Storage.Endpoint,
		"bucket", cfg.Storage.Bucket,
	)

	return objects, nil
}
