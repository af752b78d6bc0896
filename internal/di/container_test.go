package di

import (
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di/providers"
	"github.com/listenupapp/catalog-server/internal/service"
)

func testConfig(t *testing.T, rateLimit bool) *config.Config {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "")
	args := []string{
		"-env", "development",
		"-log-level", "error",
		"-db-path", filepath.Join(t.TempDir(), "nested", "catalog.db"),
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
	}
	if !rateLimit {
		args = append(args, "-rate-limit-enabled", "false")
	}
	cfg, err := config.Load(args)
	require.NoError(t, err)
	return cfg
}

func TestContainer_ResolvesServices(t *testing.T) {
	injector := NewContainer()
	do.OverrideValue(injector, testConfig(t, true))
	t.Cleanup(func() { _ = injector.Shutdown() })

	storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
	require.NoError(t, err)
	require.NoError(t, storeHandle.Ping(t.Context()))

	products, err := do.Invoke[*service.ProductService](injector)
	require.NoError(t, err)
	list, err := products.ListProducts(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)

	limiter, err := do.Invoke[*providers.RateLimiterHandle](injector)
	require.NoError(t, err)
	assert.NotNil(t, limiter.Limiter)
}

func TestContainer_RateLimitDisabled(t *testing.T) {
	injector := NewContainer()
	do.OverrideValue(injector, testConfig(t, false))
	t.Cleanup(func() { _ = injector.Shutdown() })

	limiter, err := do.Invoke[*providers.RateLimiterHandle](injector)
	require.NoError(t, err)
	assert.Nil(t, limiter.Limiter)
	assert.NoError(t, limiter.Shutdown())
}
