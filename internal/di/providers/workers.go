package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
)

const maintenanceInterval = time.Hour

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// RateLimiterHandle wraps the write limiter so its sweeper stops on shutdown.
// Limiter is nil when rate limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-client write limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimit.Enabled {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	limiter := ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	log.Info("Rate limiting enabled",
		"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
		"burst", cfg.RateLimit.Burst,
	)

	return &RateLimiterHandle{Limiter: limiter}, nil
}

// MaintenanceJob runs periodic SQLite maintenance.
type MaintenanceJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *MaintenanceJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideMaintenanceJob provides the periodic database maintenance job.
func ProvideMaintenanceJob(i do.Injector) (*MaintenanceJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				start := time.Now()
				if err := storeHandle.Optimize(ctx); err != nil {
					log.WithError(err).Warn("Database maintenance failed")
				} else {
					log.Debug("Database maintenance completed", "duration", time.Since(start))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Database maintenance job started", "interval", maintenanceInterval)

	return &MaintenanceJob{cancel: cancel, done: done}, nil
}
