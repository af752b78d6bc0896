// Package providers contains dependency injection providers for the catalog server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       level,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting catalog server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Database.Path,
		"category_delete_policy", cfg.Catalog.CategoryDeletePolicy,
	)

	return log, nil
}
