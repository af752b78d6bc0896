package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/service"
)

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, log.Logger, cfg.Catalog.CategoryDeletePolicy), nil
}

// ProvideProductService provides the product service. Update outcomes are
// reported to the metrics collectors.
func ProvideProductService(i do.Injector) (*service.ProductService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProductService(storeHandle.Store, log.Logger, m), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}
