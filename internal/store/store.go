// Package store defines the persistence interface for the catalog server.
package store

import (
	"context"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Reader holds the queries available on the store and inside a transaction.
type Reader interface {
	// Categories
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CountProductsInCategory(ctx context.Context, categoryID int64) (int, error)

	// Products
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// Tags
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Product tags
	ListProductTags(ctx context.Context, productID int64) ([]domain.ProductTag, error)
}

// Writer holds the mutations. They are only reachable through a Tx.
type Writer interface {
	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	OrphanProducts(ctx context.Context, categoryID int64) (int, error)
	DeleteProductsInCategory(ctx context.Context, categoryID int64) (int, error)

	// Products
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProductFields(ctx context.Context, id int64, fields domain.ProductFields) error
	DeleteProduct(ctx context.Context, id int64) error

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id int64) error

	// Product tags
	CreateProductTag(ctx context.Context, productID, tagID int64) (int64, error)
	DeleteProductTags(ctx context.Context, rowIDs []int64) error
}

// Tx is a unit of work. Reads observe the transaction's own writes.
type Tx interface {
	Reader
	Writer
}

// Store is the persistence handle injected into the services.
type Store interface {
	Reader

	// WithTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}
