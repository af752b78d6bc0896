package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/logger"
)

func TestUpdateProductAndTags_ReconcilesTagSet(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	t3 := env.mustTag(t, "three")
	t7 := env.mustTag(t, "seven")
	t8 := env.mustTag(t, "eight")
	p := env.mustProduct(t, "Plain Tee", "14.99", nil, t3.ID, t7.ID)

	res, err := env.products.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
		TagIDs: &[]int64{t7.ID, t8.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{t3.ID, t7.ID}, res.TagsBefore)
	assert.Equal(t, []int64{t7.ID, t8.ID}, res.TagsAfter)
	assert.Equal(t, []int64{t7.ID, t8.ID}, res.Product.TagIDs())
	assert.Equal(t, []int64{t8.ID}, res.Plan.ToAdd)
	assert.Len(t, res.Plan.ToRemove, 1)
	assert.Empty(t, res.ChangedFields)
	assert.True(t, res.Product.UpdatedAt.After(p.UpdatedAt), "a tag-only change must bump updated_at")
	assert.Equal(t, OutcomeApplied, env.observer.last().outcome)
}

func TestUpdateProductAndTags_ScalarOnlyLeavesTagsUntouched(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	red := env.mustTag(t, "red")
	p := env.mustProduct(t, "Cap", "22.99", nil, red.ID)
	rowsBefore, err := env.store.ListProductTags(ctx, p.ID)
	require.NoError(t, err)

	res, err := env.products.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
		Price: dec("25.0"),
	})
	require.NoError(t, err)

	assert.True(t, res.Product.Price.Equal(*dec("25")))
	assert.Equal(t, []string{domain.FieldPrice}, res.ChangedFields)
	assert.True(t, res.Plan.Empty())
	assert.Equal(t, res.TagsBefore, res.TagsAfter)

	rowsAfter, err := env.store.ListProductTags(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, rowsBefore, rowsAfter, "row ids must be preserved, not rewritten")
}

func TestUpdateProductAndTags_EmptyDesiredDetachesAll(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	red := env.mustTag(t, "red")
	blue := env.mustTag(t, "blue")
	p := env.mustProduct(t, "Cap", "22.99", nil, red.ID, blue.ID)

	res, err := env.products.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
		TagIDs: &[]int64{},
	})
	require.NoError(t, err)

	assert.Empty(t, res.TagsAfter)
	assert.Empty(t, res.Product.Tags)
	assert.Len(t, res.Plan.ToRemove, 2)
}

func TestUpdateProductAndTags_NoEffectiveChange(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	cat := env.mustCategory(t, "Hats")
	red := env.mustTag(t, "red")
	p := env.mustProduct(t, "Cap", "22.99", &cat.ID, red.ID)

	tests := []struct {
		name string
		req  UpdateProductRequest
	}{
		{"empty request", UpdateProductRequest{}},
		{"same scalars", UpdateProductRequest{Name: ptr(" Cap "), Price: dec("22.990"), Stock: ptr(DefaultStock), CategoryID: &cat.ID}},
		{"same tags with duplicates", UpdateProductRequest{TagIDs: &[]int64{red.ID, red.ID}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.products.UpdateProductAndTags(ctx, p.ID, tt.req)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrNoEffectiveChange), "got %v", err)
			assert.Equal(t, OutcomeNoChange, env.observer.last().outcome)
		})
	}

	got, err := env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.UpdatedAt.UnixNano(), got.UpdatedAt.UnixNano(), "no-op updates must not write")
}

func TestUpdateProductAndTags_NotFound(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)

	_, err := env.products.UpdateProductAndTags(context.Background(), 999, UpdateProductRequest{Stock: ptr(3)})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Equal(t, OutcomeNotFound, env.observer.last().outcome)
}

func TestUpdateProductAndTags_InvalidReference(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	red := env.mustTag(t, "red")
	p := env.mustProduct(t, "Cap", "22.99", nil, red.ID)

	t.Run("unknown tag", func(t *testing.T) {
		_, err := env.products.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
			Price:  dec("30"),
			TagIDs: &[]int64{red.ID, 404},
		})
		require.True(t, domainerrors.Is(err, domainerrors.ErrInvalidReference))

		var domainErr *domainerrors.Error
		require.True(t, domainerrors.As(err, &domainErr))
		assert.Equal(t, domainerrors.ReferenceDetails{Field: "tagIds", Missing: []int64{404}}, domainErr.Details)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := env.products.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
			CategoryID: ptr(int64(77)),
		})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidReference))
	})

	got, err := env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(*dec("22.99")), "price must not change on a rejected update")
	assert.Equal(t, []int64{red.ID}, got.TagIDs())
}

func TestUpdateProductAndTags_Validation(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()
	p := env.mustProduct(t, "Cap", "22.99", nil)

	tests := []struct {
		name string
		req  UpdateProductRequest
	}{
		{"blank name", UpdateProductRequest{Name: ptr("  ")}},
		{"negative price", UpdateProductRequest{Price: dec("-0.5")}},
		{"negative stock", UpdateProductRequest{Stock: ptr(-2)}},
		{"zero tag id", UpdateProductRequest{TagIDs: &[]int64{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.products.UpdateProductAndTags(ctx, p.ID, tt.req)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}
}

func TestUpdateProductAndTags_RollsBackOnAssociationFailure(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	red := env.mustTag(t, "red")
	blue := env.mustTag(t, "blue")
	p := env.mustProduct(t, "Cap", "22.99", nil, red.ID)

	tests := []struct {
		name  string
		store *failingStore
	}{
		{"insert fails", &failingStore{Store: env.store, failCreateProductTag: true}},
		{"delete fails", &failingStore{Store: env.store, failDeleteProductTags: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			svc := NewProductService(tt.store, logger.Discard().Logger, obs)

			_, err := svc.UpdateProductAndTags(ctx, p.ID, UpdateProductRequest{
				Name:   ptr("Bucket Hat"),
				Price:  dec("25"),
				TagIDs: &[]int64{blue.ID},
			})
			require.True(t, domainerrors.Is(err, domainerrors.ErrStoreFailure), "got %v", err)
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, OutcomeStoreFailure, obs.last().outcome)

			got, err := env.products.GetProduct(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "Cap", got.Name)
			assert.True(t, got.Price.Equal(*dec("22.99")))
			assert.Equal(t, []int64{red.ID}, got.TagIDs())
		})
	}
}

func TestUpdateProductAndTags_Idempotent(t *testing.T) {
	env := setupTestEnv(t, domain.DeletePolicyOrphan)
	ctx := context.Background()

	a := env.mustTag(t, "a")
	b := env.mustTag(t, "b")
	p := env.mustProduct(t, "Cap", "22.99", nil, a.ID)

	req := UpdateProductRequest{Stock: ptr(3), TagIDs: &[]int64{b.ID}}
	_, err := env.products.UpdateProductAndTags(ctx, p.ID, req)
	require.NoError(t, err)

	_, err = env.products.UpdateProductAndTags(ctx, p.ID, req)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoEffectiveChange))
}
