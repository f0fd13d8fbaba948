// Package di provides dependency injection configuration for the AudioShelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/audioshelfapp/audioshelf-server/internal/config"
	"github.com/audioshelfapp/audioshelf-server/internal/di/providers"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideObjectStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvidePlaybackService)
	do.Provide(injector, providers.ProvideProgressService)
	do.Provide(injector, providers.ProvideAdminService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns the injector ready for
// lifecycle management. This triggers lazy initialization in dependency
// order.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.BookService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.PlaybackService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ProgressService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AdminService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	// Rebuild the search index if a mapping bump cleared it.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
