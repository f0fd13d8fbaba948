package providers

import (
	"github.com/samber/do/v2"

	"github.com/audioshelfapp/audioshelf-server/internal/config"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Data.StorePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Data.StorePath)

	return &StoreHandle{Store: db}, nil
}
