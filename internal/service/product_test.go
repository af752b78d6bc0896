package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

func TestProductService_CreateProduct(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	shirts := env.mustCategory(t, "Shirts")
	red := env.mustTag(t, "red")
	blue := env.mustTag(t, "blue")

	p, err := env.products.CreateProduct(ctx, CreateProductRequest{
		Name:       "  Plain Tee ",
		Price:      *dec("14.99"),
		CategoryID: &shirts.ID,
		TagIDs:     []int64{blue.ID, red.ID, blue.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Plain Tee", p.Name)
	assert.Equal(t, DefaultStock, p.Stock)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Shirts", p.Category.Name)
	assert.Equal(t, []int64{red.ID, blue.ID}, p.TagIDs())
}

func TestProductService_CreateProduct_InvalidReferences(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()
	hats := env.mustCategory(t, "Hats")
	red := env.mustTag(t, "red")

	_, err := env.products.CreateProduct(ctx, CreateProductRequest{
		Name:       "Ghost",
		Price:      *dec("1"),
		CategoryID: ptr(int64(42)),
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidReference))

	_, err = env.products.CreateProduct(ctx, CreateProductRequest{
		Name:       "Ghost",
		Price:      *dec("1"),
		CategoryID: &hats.ID,
		TagIDs:     []int64{red.ID, 99, 98},
	})
	require.True(t, domainerrors.Is(err, domainerrors.ErrInvalidReference))
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.ReferenceDetails{Field: "tagIds", Missing: []int64{98, 99}}, domainErr.Details)

	products, err := env.products.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products, "rejected creates must not leave rows behind")
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()
	cat := env.mustCategory(t, "Shirts")

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"blank name", CreateProductRequest{Name: "   ", Price: *dec("1"), CategoryID: &cat.ID}},
		{"negative price", CreateProductRequest{Name: "A", Price: *dec("-1"), CategoryID: &cat.ID}},
		{"sub-cent price", CreateProductRequest{Name: "A", Price: *dec("1.001"), CategoryID: &cat.ID}},
		{"negative stock", CreateProductRequest{Name: "A", Price: *dec("1"), Stock: ptr(-1), CategoryID: &cat.ID}},
		{"missing category", CreateProductRequest{Name: "A", Price: *dec("1")}},
		{"zero category", CreateProductRequest{Name: "A", Price: *dec("1"), CategoryID: ptr(int64(0))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.products.CreateProduct(ctx, tt.req)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}

	products, err := env.products.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)

	_, err := env.products.GetProduct(context.Background(), 404)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestProductService_DeleteProduct(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	red := env.mustTag(t, "red")
	p := env.mustProduct(t, "Cap", "22.99", nil, red.ID)

	deleted, err := env.products.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap", deleted.Name)

	tag, err := env.tags.GetTag(ctx, red.ID)
	require.NoError(t, err)
	assert.Empty(t, tag.Products)

	_, err = env.products.DeleteProduct(ctx, p.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
