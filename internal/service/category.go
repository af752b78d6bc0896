package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// CategoryService orchestrates category operations.
type CategoryService struct {
	store        store.Store
	logger       *slog.Logger
	validator    *validation.Validator
	deletePolicy domain.CategoryDeletePolicy
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger, deletePolicy domain.CategoryDeletePolicy) *CategoryService {
	if deletePolicy == "" {
		deletePolicy = domain.DeletePolicyOrphan
	}
	return &CategoryService{
		store:        store,
		logger:       logger,
		validator:    validation.New(),
		deletePolicy: deletePolicy,
	}
}

// DeletePolicy returns the policy applied by DeleteCategory.
func (s *CategoryService) DeletePolicy() domain.CategoryDeletePolicy {
	return s.deletePolicy
}

// ListCategories returns all categories with their products.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, storeFailure(err, "list categories")
	}
	return cats, nil
}

// GetCategory returns a category with its products.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("category %d not found", id)
	}
	if err != nil {
		return nil, storeFailure(err, "get category")
	}
	return cat, nil
}

// CategoryRequest carries the writable fields of a category.
type CategoryRequest struct {
	Name string `json:"category_name" validate:"required,max=255"`
}

// CreateCategory creates a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	req.Name = domain.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &domain.Category{
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
		Products:  []*domain.Product{},
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.CreateCategory(ctx, cat)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExistsf("category %q already exists", req.Name)
	}
	if err != nil {
		return nil, storeFailure(err, "create category")
	}

	logFor(ctx, s.logger).Info("category created", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// CategoryRename reports a rename: Category holds the new state, Was the old name.
type CategoryRename struct {
	Category *domain.Category
	Was      string
}

// UpdateCategory renames a category. Renaming to the current name is
// reported as NoEffectiveChange.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*CategoryRename, error) {
	req.Name = domain.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var result CategoryRename
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		cat, err := tx.GetCategory(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("category %d not found", id)
		}
		if err != nil {
			return err
		}
		if cat.Name == req.Name {
			return domainerrors.NoEffectiveChange("category name is unchanged").
				WithDetails(map[string]any{"id": id, "category_name": cat.Name})
		}

		result.Was = cat.Name
		cat.Name = req.Name
		cat.Touch()
		if err := tx.UpdateCategory(ctx, cat); err != nil {
			return err
		}
		result.Category = cat
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExistsf("category %q already exists", req.Name)
	}
	if err != nil {
		return nil, storeFailure(err, "update category")
	}

	logFor(ctx, s.logger).Info("category renamed", "id", id, "was", result.Was, "now", result.Category.Name)
	return &result, nil
}

// CategoryDeletion reports the outcome of DeleteCategory.
type CategoryDeletion struct {
	Category         *domain.Category
	Policy           domain.CategoryDeletePolicy
	AffectedProducts int
}

// DeleteCategory deletes a category and applies the delete policy to its
// products inside the same transaction.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) (*CategoryDeletion, error) {
	result := CategoryDeletion{Policy: s.deletePolicy}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		cat, err := tx.GetCategory(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("category %d not found", id)
		}
		if err != nil {
			return err
		}
		result.Category = cat

		switch s.deletePolicy {
		case domain.DeletePolicyRestrict:
			n, err := tx.CountProductsInCategory(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return domainerrors.Conflictf("category %d still has %d products", id, n).
					WithDetails(map[string]any{"id": id, "products": n})
			}
		case domain.DeletePolicyCascade:
			if result.AffectedProducts, err = tx.DeleteProductsInCategory(ctx, id); err != nil {
				return err
			}
		default:
			if result.AffectedProducts, err = tx.OrphanProducts(ctx, id); err != nil {
				return err
			}
		}

		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return nil, storeFailure(err, "delete category")
	}

	logFor(ctx, s.logger).Info("category deleted",
		"id", id,
		"policy", string(s.deletePolicy),
		"affected_products", result.AffectedProducts,
	)
	return &result, nil
}
