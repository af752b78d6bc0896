package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/api/dto"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/categories",
		Summary:     "List categories",
		Description: "Returns every category with its products",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a category with its products",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/categories",
		Summary:       "Create category",
		Description:   "Creates a category with a unique name",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPut,
		Path:        "/api/categories/{id}",
		Summary:     "Rename category",
		Description: "Renames a category and reports the previous name",
		Tags:        []string{"Categories"},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a category. What happens to its products depends on the configured delete policy",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryRequest is the request body for creating or renaming a category.
type CategoryRequest struct {
	CategoryName string `json:"category_name" minLength:"1" maxLength:"255" doc:"Category name"`
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body []dto.Category
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body dto.Category
}

// GetCategoryInput contains parameters for getting a category.
type GetCategoryInput struct {
	dto.IDParam
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Body CategoryRequest
}

// UpdateCategoryInput wraps the rename request for Huma.
type UpdateCategoryInput struct {
	dto.IDParam
	Body CategoryRequest
}

// CategoryRenameResponse reports a rename.
type CategoryRenameResponse struct {
	Message string       `json:"message" doc:"Success message"`
	Was     string       `json:"was" doc:"Name before the rename"`
	Now     dto.Category `json:"now" doc:"Category after the rename"`
}

// UpdateCategoryOutput wraps the rename response for Huma.
type UpdateCategoryOutput struct {
	Body CategoryRenameResponse
}

// DeleteCategoryInput contains parameters for deleting a category.
type DeleteCategoryInput struct {
	dto.IDParam
}

// CategoryDeleteResponse reports a deletion and its effect on products.
type CategoryDeleteResponse struct {
	Message          string `json:"message" doc:"Success message"`
	Policy           string `json:"policy" doc:"Delete policy applied: orphan, cascade or restrict" enum:"orphan,cascade,restrict"`
	AffectedProducts int    `json:"affected_products" doc:"Products uncategorized or deleted"`
}

// DeleteCategoryOutput wraps the delete response for Huma.
type DeleteCategoryOutput struct {
	Body CategoryDeleteResponse
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Category.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &ListCategoriesOutput{Body: dto.NewCategories(categories)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: dto.NewCategory(c)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.CreateCategory(ctx, service.CategoryRequest{Name: input.Body.CategoryName})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: dto.NewCategory(c)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*UpdateCategoryOutput, error) {
	res, err := s.services.Category.UpdateCategory(ctx, input.ID, service.CategoryRequest{Name: input.Body.CategoryName})
	if err != nil {
		return nil, err
	}
	return &UpdateCategoryOutput{Body: CategoryRenameResponse{
		Message: fmt.Sprintf("category %q renamed to %q", res.Was, res.Category.Name),
		Was:     res.Was,
		Now:     dto.NewCategory(res.Category),
	}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	res, err := s.services.Category.DeleteCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteCategoryOutput{Body: CategoryDeleteResponse{
		Message:          fmt.Sprintf("category %q deleted", res.Category.Name),
		Policy:           string(res.Policy),
		AffectedProducts: res.AffectedProducts,
	}}, nil
}
