package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/reconcile"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// DefaultStock is used when a product is created without a stock level.
const DefaultStock = 10

// Outcomes reported to a ReconcileObserver.
const (
	OutcomeApplied          = "applied"
	OutcomeNoChange         = "no_change"
	OutcomeNotFound         = "not_found"
	OutcomeInvalidReference = "invalid_reference"
	OutcomeValidation       = "validation"
	OutcomeStoreFailure     = "store_failure"
)

// ReconcileObserver receives the result of every product update.
type ReconcileObserver interface {
	ObserveProductUpdate(outcome string, plan reconcile.Plan, elapsed time.Duration)
}

// ProductService orchestrates product operations, including the combined
// scalar and tag update.
type ProductService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
	observer  ReconcileObserver
}

// NewProductService creates a new product service. observer may be nil.
func NewProductService(store store.Store, logger *slog.Logger, observer ReconcileObserver) *ProductService {
	return &ProductService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
		observer:  observer,
	}
}

// ListProducts returns all products with their category and tags.
func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, storeFailure(err, "list products")
	}
	return products, nil
}

// GetProduct returns a product with its category and tags.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("product %d not found", id)
	}
	if err != nil {
		return nil, storeFailure(err, "get product")
	}
	return p, nil
}

// CreateProductRequest contains fields for creating a product.
type CreateProductRequest struct {
	Name       string          `json:"product_name" validate:"required,max=255"`
	Price      decimal.Decimal `json:"price" validate:"price"`
	Stock      *int            `json:"stock" validate:"omitnil,gte=0"`
	CategoryID *int64          `json:"category_id" validate:"required,gt=0"`
	TagIDs     []int64         `json:"tagIds" validate:"omitempty,dive,gt=0"`
}

// CreateProduct creates a product in exactly one category, with one
// association row per distinct tag id.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	req.Name = domain.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	stock := DefaultStock
	if req.Stock != nil {
		stock = *req.Stock
	}
	tagIDs := reconcile.Distinct(req.TagIDs)

	now := time.Now()
	p := &domain.Product{
		Name:       req.Name,
		Price:      req.Price,
		Stock:      stock,
		CategoryID: req.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var created *domain.Product
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}
		if err := checkTags(ctx, tx, tagIDs); err != nil {
			return err
		}

		if err := tx.CreateProduct(ctx, p); err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if _, err := tx.CreateProductTag(ctx, p.ID, tagID); err != nil {
				return err
			}
		}

		var err error
		created, err = tx.GetProduct(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, "create product")
	}

	logFor(ctx, s.logger).Info("product created", "id", created.ID, "name", created.Name, "tags", tagIDs)
	return created, nil
}

// UpdateProductRequest is a partial product update. Nil fields are left
// unchanged. A nil TagIDs leaves the tag set untouched; a non-nil TagIDs is
// the complete desired set, so an empty list detaches every tag.
type UpdateProductRequest struct {
	Name       *string          `json:"product_name" validate:"omitnil,min=1,max=255"`
	Price      *decimal.Decimal `json:"price" validate:"omitnil,price"`
	Stock      *int             `json:"stock" validate:"omitnil,gte=0"`
	CategoryID *int64           `json:"category_id" validate:"omitnil,gt=0"`
	TagIDs     *[]int64         `json:"tagIds" validate:"omitnil,dive,gt=0"`
}

func (r UpdateProductRequest) fields() domain.ProductFields {
	return domain.ProductFields{
		Name:       r.Name,
		Price:      r.Price,
		Stock:      r.Stock,
		CategoryID: r.CategoryID,
	}
}

// UpdateResult describes a committed product update.
type UpdateResult struct {
	Product       *domain.Product
	TagsBefore    []int64 // ascending
	TagsAfter     []int64 // ascending
	ChangedFields []string
	Plan          reconcile.Plan
}

// UpdateProductAndTags applies the scalar changes and reconciles the tag set
// in one transaction. Either both are committed or neither is.
//
// Errors: NotFound when the product does not exist, Validation for bad
// field values, InvalidReference when the category or any desired tag does
// not exist, NoEffectiveChange when nothing would change, and StoreFailure
// for any persistence error.
func (s *ProductService) UpdateProductAndTags(ctx context.Context, id int64, req UpdateProductRequest) (*UpdateResult, error) {
	start := time.Now()

	fields := req.fields().Normalize()
	req.Name = fields.Name
	if err := s.validator.Validate(req); err != nil {
		s.observe(OutcomeValidation, reconcile.Plan{}, start)
		return nil, err
	}

	var result UpdateResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.GetProduct(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("product %d not found", id)
		}
		if err != nil {
			return err
		}
		if err := checkCategory(ctx, tx, fields.CategoryID); err != nil {
			return err
		}

		changed := fields.Diff(current)

		// The plan is computed from rows read on this transaction.
		rows, err := tx.ListProductTags(ctx, id)
		if err != nil {
			return err
		}
		result.TagsBefore = reconcile.TagIDs(rows)
		result.TagsAfter = result.TagsBefore

		if req.TagIDs != nil {
			desired := reconcile.Distinct(*req.TagIDs)
			if err := checkTags(ctx, tx, desired); err != nil {
				return err
			}
			result.Plan = reconcile.Diff(rows, desired)
			result.TagsAfter = desired
		}

		if changed.Empty() && result.Plan.Empty() {
			return domainerrors.NoEffectiveChange("update does not change the product").
				WithDetails(map[string]any{"id": id})
		}

		// Also runs for tag-only changes so updated_at moves with the tag set.
		if err := tx.UpdateProductFields(ctx, id, changed); err != nil {
			return err
		}
		if err := tx.DeleteProductTags(ctx, result.Plan.ToRemove); err != nil {
			return err
		}
		for _, tagID := range result.Plan.ToAdd {
			if _, err := tx.CreateProductTag(ctx, id, tagID); err != nil {
				return err
			}
		}

		result.ChangedFields = changed.Names()
		result.Product, err = tx.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		err = storeFailure(err, "update product")
		s.observe(outcomeOf(err), result.Plan, start)
		return nil, err
	}

	if got := result.Product.TagIDs(); !slices.Equal(got, result.TagsAfter) {
		// Unreachable while the unique (product_id, tag_id) index holds.
		logFor(ctx, s.logger).Error("product tags diverged after reconcile", "id", id, "want", result.TagsAfter, "got", got)
	}

	s.observe(OutcomeApplied, result.Plan, start)
	logFor(ctx, s.logger).Info("product updated",
		"id", id,
		"changed", result.ChangedFields,
		"tags_added", result.Plan.ToAdd,
		"tag_rows_removed", result.Plan.ToRemove,
	)
	return &result, nil
}

// DeleteProduct deletes a product and returns it as it was.
// Its tag associations are removed with it.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var deleted *domain.Product
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.GetProduct(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("product %d not found", id)
		}
		if err != nil {
			return err
		}
		deleted = p
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return nil, storeFailure(err, "delete product")
	}

	logFor(ctx, s.logger).Info("product deleted", "id", id, "name", deleted.Name)
	return deleted, nil
}

func (s *ProductService) observe(outcome string, plan reconcile.Plan, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveProductUpdate(outcome, plan, time.Since(start))
	}
}

// checkCategory returns InvalidReference when id is set and names no category.
func checkCategory(ctx context.Context, tx store.Tx, id *int64) error {
	if id == nil {
		return nil
	}
	exists, err := tx.CategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.InvalidReference(domain.FieldCategoryID, []int64{*id})
	}
	return nil
}

// checkTags returns InvalidReference listing every id that names no tag.
func checkTags(ctx context.Context, tx store.Tx, ids []int64) error {
	missing, err := tx.MissingTagIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return domainerrors.InvalidReference("tagIds", missing)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domainerrors.ErrInvalidReference):
		return OutcomeInvalidReference
	case errors.Is(err, domainerrors.ErrNoEffectiveChange):
		return OutcomeNoChange
	case errors.Is(err, domainerrors.ErrValidation):
		return OutcomeValidation
	default:
		return OutcomeStoreFailure
	}
}
