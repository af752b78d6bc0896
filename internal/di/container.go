// Package di provides dependency injection configuration for the catalog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di/providers"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideProductService)
	do.Provide(injector, providers.ProvideTagService)

	// Workers
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideMaintenanceJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*metrics.Metrics](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.ProductService](injector)
	_ = do.MustInvoke[*service.TagService](injector)

	// Workers
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.MaintenanceJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
