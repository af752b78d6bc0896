package dto

import (
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// ProductSummary is a product without its relations, as nested in
// category and tag responses.
type ProductSummary struct {
	ID          int64  `json:"id" doc:"Product ID"`
	ProductName string `json:"product_name" doc:"Product name"`
	Price       string `json:"price" doc:"Price with two decimal places" example:"14.99"`
	Stock       int    `json:"stock" doc:"Units in stock"`
	CategoryID  *int64 `json:"category_id" doc:"Owning category, null when uncategorized"`
}

// CategorySummary is a category without its products.
type CategorySummary struct {
	ID           int64  `json:"id" doc:"Category ID"`
	CategoryName string `json:"category_name" doc:"Category name"`
}

// TagSummary is a tag without its products.
type TagSummary struct {
	ID      int64  `json:"id" doc:"Tag ID"`
	TagName string `json:"tag_name" doc:"Tag name"`
}

// Product is a product with its category and tags.
type Product struct {
	ProductSummary
	Category  *CategorySummary `json:"category" doc:"Owning category, null when uncategorized"`
	Tags      []TagSummary     `json:"tags" doc:"Attached tags, ordered by id"`
	CreatedAt time.Time        `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last update time"`
}

// Category is a category with its products.
type Category struct {
	CategorySummary
	Products  []ProductSummary `json:"products" doc:"Products in this category"`
	CreatedAt time.Time        `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last update time"`
}

// Tag is a tag with the products carrying it.
type Tag struct {
	TagSummary
	Products  []ProductSummary `json:"products" doc:"Products carrying this tag"`
	CreatedAt time.Time        `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last update time"`
}

// NewProductSummary converts a domain product.
func NewProductSummary(p *domain.Product) ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		ProductName: p.Name,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

// NewProduct converts a domain product with its relations.
func NewProduct(p *domain.Product) Product {
	out := Product{
		ProductSummary: NewProductSummary(p),
		Tags:           make([]TagSummary, 0, len(p.Tags)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		out.Category = &CategorySummary{ID: p.Category.ID, CategoryName: p.Category.Name}
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, TagSummary{ID: t.ID, TagName: t.Name})
	}
	return out
}

// NewProducts converts a list of domain products.
func NewProducts(ps []*domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = NewProduct(p)
	}
	return out
}

func productSummaries(ps []*domain.Product) []ProductSummary {
	out := make([]ProductSummary, len(ps))
	for i, p := range ps {
		out[i] = NewProductSummary(p)
	}
	return out
}

// NewCategory converts a domain category with its products.
func NewCategory(c *domain.Category) Category {
	return Category{
		CategorySummary: CategorySummary{ID: c.ID, CategoryName: c.Name},
		Products:        productSummaries(c.Products),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// NewCategories converts a list of domain categories.
func NewCategories(cs []*domain.Category) []Category {
	out := make([]Category, len(cs))
	for i, c := range cs {
		out[i] = NewCategory(c)
	}
	return out
}

// NewTag converts a domain tag with its products.
func NewTag(t *domain.Tag) Tag {
	return Tag{
		TagSummary: TagSummary{ID: t.ID, TagName: t.Name},
		Products:   productSummaries(t.Products),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// NewTags converts a list of domain tags.
func NewTags(ts []*domain.Tag) []Tag {
	out := make([]Tag, len(ts))
	for i, t := range ts {
		out[i] = NewTag(t)
	}
	return out
}
