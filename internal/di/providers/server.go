package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/api"
	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	services := &api.Services{
		Category: do.MustInvoke[*service.CategoryService](i),
		Product:  do.MustInvoke[*service.ProductService](i),
		Tag:      do.MustInvoke[*service.TagService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		Metrics:        m,
		RateLimiter:    limiter.Limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
