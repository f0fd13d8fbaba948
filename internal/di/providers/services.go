package providers

import (
	"github.com/samber/do/v2"

	"github.com/audioshelfapp/audioshelf-server/internal/config"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
)

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	objects := do.MustInvoke[*storage.MinioStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, objects, log), nil
}

// ProvidePlaybackService provides the streaming URL service.
func ProvidePlaybackService(i do.Injector) (*service.PlaybackService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	objects := do.MustInvoke[*storage.MinioStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPlaybackService(storeHandle.Store, objects, log), nil
}

// ProvideProgressService provides the playback progress service.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(storeHandle.Store, log), nil
}

// ProvideAdminService provides the admin session service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(cfg.Admin.Password, cfg.Admin.SessionDuration, log)
}
