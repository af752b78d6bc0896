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

// TagService orchestrates tag operations.
type TagService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListTags returns all tags with their products.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, storeFailure(err, "list tags")
	}
	return tags, nil
}

// GetTag returns a tag with its products.
func (s *TagService) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("tag %d not found", id)
	}
	if err != nil {
		return nil, storeFailure(err, "get tag")
	}
	return t, nil
}

// TagRequest carries the writable fields of a tag.
type TagRequest struct {
	Name string `json:"tag_name" validate:"required,max=255"`
}

// CreateTag creates a new tag.
func (s *TagService) CreateTag(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	req.Name = domain.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &domain.Tag{
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
		Products:  []*domain.Product{},
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.CreateTag(ctx, t)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExistsf("tag %q already exists", req.Name)
	}
	if err != nil {
		return nil, storeFailure(err, "create tag")
	}

	logFor(ctx, s.logger).Info("tag created", "id", t.ID, "name", t.Name)
	return t, nil
}

// TagRename reports a rename: Tag holds the new state, Was the old name.
type TagRename struct {
	Tag *domain.Tag
	Was string
}

// UpdateTag renames a tag. Renaming to the current name is reported as
// NoEffectiveChange.
func (s *TagService) UpdateTag(ctx context.Context, id int64, req TagRequest) (*TagRename, error) {
	req.Name = domain.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var result TagRename
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.GetTag(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("tag %d not found", id)
		}
		if err != nil {
			return err
		}
		if t.Name == req.Name {
			return domainerrors.NoEffectiveChange("tag name is unchanged").
				WithDetails(map[string]any{"id": id, "tag_name": t.Name})
		}

		result.Was = t.Name
		t.Name = req.Name
		t.Touch()
		if err := tx.UpdateTag(ctx, t); err != nil {
			return err
		}
		result.Tag = t
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExistsf("tag %q already exists", req.Name)
	}
	if err != nil {
		return nil, storeFailure(err, "update tag")
	}

	logFor(ctx, s.logger).Info("tag renamed", "id", id, "was", result.Was, "now", result.Tag.Name)
	return &result, nil
}

// DeleteTag deletes a tag. Its product associations are removed with it.
func (s *TagService) DeleteTag(ctx context.Context, id int64) (*domain.Tag, error) {
	var deleted *domain.Tag
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.GetTag(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("tag %d not found", id)
		}
		if err != nil {
			return err
		}
		deleted = t
		return tx.DeleteTag(ctx, id)
	})
	if err != nil {
		return nil, storeFailure(err, "delete tag")
	}

	logFor(ctx, s.logger).Info("tag deleted", "id", id, "name", deleted.Name, "products", len(deleted.Products))
	return deleted, nil
}
