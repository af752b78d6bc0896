package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/listenupapp/catalog-server/internal/api/dto"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/products",
		Summary:     "List products",
		Description: "Returns every product with its category and tags",
		Tags:        []string{"Products"},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/products/{id}",
		Summary:     "Get product",
		Description: "Returns a product with its category and tags",
		Tags:        []string{"Products"},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createProduct",
		Method:        http.MethodPost,
		Path:          "/api/products",
		Summary:       "Create product",
		Description:   "Creates a product and attaches the given tags",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPut,
		Path:        "/api/products/{id}",
		Summary:     "Update product",
		Description: "Applies a partial update. When tagIds is present it replaces the tag set; both changes commit together or not at all",
		Tags:        []string{"Products"},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/products/{id}",
		Summary:     "Delete product",
		Description: "Deletes a product and its tag associations",
		Tags:        []string{"Products"},
	}, s.handleDeleteProduct)
}

// === DTOs ===

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	ProductName string  `json:"product_name" minLength:"1" maxLength:"255" doc:"Product name"`
	Price       float64 `json:"price" minimum:"0" doc:"Price, at most two decimal places" example:"14.99"`
	Stock       *int    `json:"stock,omitempty" minimum:"0" doc:"Units in stock, defaults to 10"`
	CategoryID  int64   `json:"category_id" minimum:"1" doc:"Owning category"`
	TagIDs      []int64 `json:"tagIds,omitempty" doc:"Tags to attach; duplicates are ignored"`
}

// UpdateProductRequest is the request body for a partial product update.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	ProductName *string  `json:"product_name,omitempty" minLength:"1" maxLength:"255" doc:"New product name"`
	Price       *float64 `json:"price,omitempty" minimum:"0" doc:"New price"`
	Stock       *int     `json:"stock,omitempty" minimum:"0" doc:"New stock level"`
	CategoryID  *int64   `json:"category_id,omitempty" minimum:"1" doc:"New owning category"`
	TagIDs      *[]int64 `json:"tagIds,omitempty" doc:"Complete desired tag set; an empty list detaches every tag"`
}

// ListProductsOutput wraps the product list for Huma.
type ListProductsOutput struct {
	Body []dto.Product
}

// ProductOutput wraps a single product for Huma.
type ProductOutput struct {
	Body dto.Product
}

// GetProductInput contains parameters for getting a product.
type GetProductInput struct {
	dto.IDParam
}

// CreateProductInput wraps the create product request for Huma.
type CreateProductInput struct {
	Body CreateProductRequest
}

// UpdateProductInput wraps the update request for Huma.
type UpdateProductInput struct {
	dto.IDParam
	Body UpdateProductRequest
}

// ProductUpdateResponse reports what an update changed.
type ProductUpdateResponse struct {
	Message    string      `json:"message" doc:"Success message"`
	Product    dto.Product `json:"product" doc:"Product after the update"`
	TagsBefore []int64     `json:"tags_before" doc:"Tag ids before the update, ascending"`
	TagsAfter  []int64     `json:"tags_after" doc:"Tag ids after the update, ascending"`
	Changed    []string    `json:"changed" doc:"Scalar fields whose value changed"`
}

// UpdateProductOutput wraps the update response for Huma.
type UpdateProductOutput struct {
	Body ProductUpdateResponse
}

// DeleteProductInput contains parameters for deleting a product.
type DeleteProductInput struct {
	dto.IDParam
}

// ProductDeleteResponse reports a deletion.
type ProductDeleteResponse struct {
	Message string      `json:"message" doc:"Success message"`
	Product dto.Product `json:"product" doc:"The product as it was before deletion"`
}

// DeleteProductOutput wraps the delete response for Huma.
type DeleteProductOutput struct {
	Body ProductDeleteResponse
}

// === Handlers ===

func (s *Server) handleListProducts(ctx context.Context, _ *struct{}) (*ListProductsOutput, error) {
	products, err := s.services.Product.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ListProductsOutput{Body: dto.NewProducts(products)}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *GetProductInput) (*ProductOutput, error) {
	p, err := s.services.Product.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: dto.NewProduct(p)}, nil
}

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	b := input.Body
	p, err := s.services.Product.CreateProduct(ctx, service.CreateProductRequest{
		Name:       b.ProductName,
		Price:      decimal.NewFromFloat(b.Price),
		Stock:      b.Stock,
		CategoryID: &b.CategoryID,
		TagIDs:     b.TagIDs,
	})
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: dto.NewProduct(p)}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*UpdateProductOutput, error) {
	b := input.Body
	req := service.UpdateProductRequest{
		Name:       b.ProductName,
		Stock:      b.Stock,
		CategoryID: b.CategoryID,
		TagIDs:     b.TagIDs,
	}
	if b.Price != nil {
		price := decimal.NewFromFloat(*b.Price)
		req.Price = &price
	}

	res, err := s.services.Product.UpdateProductAndTags(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &UpdateProductOutput{Body: ProductUpdateResponse{
		Message:    fmt.Sprintf("product %d updated", res.Product.ID),
		Product:    dto.NewProduct(res.Product),
		TagsBefore: nonNil(res.TagsBefore),
		TagsAfter:  nonNil(res.TagsAfter),
		Changed:    nonNil(res.ChangedFields),
	}}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *DeleteProductInput) (*DeleteProductOutput, error) {
	p, err := s.services.Product.DeleteProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteProductOutput{Body: ProductDeleteResponse{
		Message: fmt.Sprintf("product %q deleted", p.Name),
		Product: dto.NewProduct(p),
	}}, nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
