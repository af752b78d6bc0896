package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/reconcile"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/store/sqlite"
)

// testEnv bundles the services over one temporary database.
type testEnv struct {
	store      *sqlite.Store
	categories *CategoryService
	products   *ProductService
	tags       *TagService
	observer   *recordingObserver

	general *domain.Category // created on first use by mustProduct
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupTestEnv(t *testing.T, policy domain.CategoryDeletePolicy) *testEnv {
	t.Helper()
	s := newTestStore(t)
	obs := &recordingObserver{}
	log := logger.Discard().Logger
	return &testEnv{
		store:      s,
		categories: NewCategoryService(s, log, policy),
		products:   NewProductService(s, log, obs),
		tags:       NewTagService(s, log),
		observer:   obs,
	}
}

func (e *testEnv) mustCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := e.categories.CreateCategory(context.Background(), CategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) mustTag(t *testing.T, name string) *domain.Tag {
	t.Helper()
	tag, err := e.tags.CreateTag(context.Background(), TagRequest{Name: name})
	require.NoError(t, err)
	return tag
}

// mustProduct creates a product. A nil categoryID files it under a shared
// "General" category.
func (e *testEnv) mustProduct(t *testing.T, name, price string, categoryID *int64, tagIDs ...int64) *domain.Product {
	t.Helper()
	if categoryID == nil {
		if e.general == nil {
			e.general = e.mustCategory(t, "General")
		}
		categoryID = &e.general.ID
	}
	p, err := e.products.CreateProduct(context.Background(), CreateProductRequest{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		TagIDs:     tagIDs,
	})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type observation struct {
	outcome string
	plan    reconcile.Plan
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveProductUpdate(outcome string, plan reconcile.Plan, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{outcome: outcome, plan: plan})
}

func (r *recordingObserver) last() observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return observation{}
	}
	return r.seen[len(r.seen)-1]
}

var errInjected = errors.New("injected disk failure")

// failingStore wraps a store so chosen transactional writes fail.
type failingStore struct {
	store.Store
	failCreateProductTag  bool
	failDeleteProductTags bool
}

func (f *failingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return f.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&failingTx{Tx: tx, store: f})
	})
}

type failingTx struct {
	store.Tx
	store *failingStore
}

func (t *failingTx) CreateProductTag(ctx context.Context, productID, tagID int64) (int64, error) {
	if t.store.failCreateProductTag {
		return 0, errInjected
	}
	return t.Tx.CreateProductTag(ctx, productID, tagID)
}

func (t *failingTx) DeleteProductTags(ctx context.Context, rowIDs []int64) error {
	if t.store.failDeleteProductTags {
		return errInjected
	}
	return t.Tx.DeleteProductTags(ctx, rowIDs)
}
