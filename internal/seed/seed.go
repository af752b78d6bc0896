// Package seed loads the sample catalog through the services, so seeded
// rows pass the same validation and reference checks as API writes.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/service"
)

// Product is a sample product. Category and Tags refer to sample names.
type Product struct {
	Name     string
	Price    string
	Stock    int
	Category string
	Tags     []string
}

// Catalog is a complete sample data set.
type Catalog struct {
	Categories []string
	Tags       []string
	Products   []Product
}

// Sample is the catalog loaded by the seed command.
var Sample = Catalog{
	Categories: []string{"Shirts", "Shorts", "Music", "Hats", "Shoes"},
	Tags: []string{
		"rock music", "pop music", "blue", "red",
		"green", "white", "gold", "pop culture",
	},
	Products: []Product{
		{Name: "Plain T-Shirt", Price: "14.99", Stock: 14, Category: "Shirts", Tags: []string{"white", "gold", "pop culture"}},
		{Name: "Running Sneakers", Price: "90.00", Stock: 25, Category: "Shoes", Tags: []string{"white"}},
		{Name: "Branded Baseball Hat", Price: "22.99", Stock: 12, Category: "Hats", Tags: []string{"rock music", "blue", "red", "green"}},
		{Name: "Top 40 Music Compilation Vinyl Record", Price: "12.99", Stock: 50, Category: "Music", Tags: []string{"rock music", "pop music", "pop culture"}},
		{Name: "Cargo Shorts", Price: "29.99", Stock: 22, Category: "Shorts", Tags: []string{"blue"}},
	},
}

// Report counts what a run created and what it found already present.
type Report struct {
	RunID      string
	Categories int
	Tags       int
	Products   int
	Existing   int
}

// Seeder writes a Catalog through the services.
type Seeder struct {
	categories *service.CategoryService
	tags       *service.TagService
	products   *service.ProductService
	logger     *slog.Logger
}

// New creates a Seeder.
func New(categories *service.CategoryService, tags *service.TagService, products *service.ProductService, logger *slog.Logger) *Seeder {
	return &Seeder{
		categories: categories,
		tags:       tags,
		products:   products,
		logger:     logger,
	}
}

// Run loads c. Categories and tags that already exist by name are reused
// and products that already exist by name are skipped, so running twice
// leaves the catalog as one run would.
func (s *Seeder) Run(ctx context.Context, c Catalog) (*Report, error) {
	report := &Report{RunID: id.MustGenerate(id.PrefixSeed)}
	log := s.logger.With("seed_run", report.RunID)

	categoryIDs, err := s.seedCategories(ctx, c.Categories, report)
	if err != nil {
		return report, err
	}
	tagIDs, err := s.seedTags(ctx, c.Tags, report)
	if err != nil {
		return report, err
	}
	if err := s.seedProducts(ctx, c.Products, categoryIDs, tagIDs, report); err != nil {
		return report, err
	}

	log.Info("seed complete",
		"categories", report.Categories,
		"tags", report.Tags,
		"products", report.Products,
		"existing", report.Existing,
	)
	return report, nil
}

func (s *Seeder) seedCategories(ctx context.Context, names []string, report *Report) (map[string]int64, error) {
	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(names))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for _, name := range names {
		if _, ok := ids[name]; ok {
			report.Existing++
			continue
		}
		c, err := s.categories.CreateCategory(ctx, service.CategoryRequest{Name: name})
		if err != nil {
			return nil, fmt.Errorf("seed category %q: %w", name, err)
		}
		ids[c.Name] = c.ID
		report.Categories++
	}
	return ids, nil
}

func (s *Seeder) seedTags(ctx context.Context, names []string, report *Report) (map[string]int64, error) {
	existing, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(names))
	for _, t := range existing {
		ids[t.Name] = t.ID
	}

	for _, name := range names {
		if _, ok := ids[name]; ok {
			report.Existing++
			continue
		}
		t, err := s.tags.CreateTag(ctx, service.TagRequest{Name: name})
		if err != nil {
			return nil, fmt.Errorf("seed tag %q: %w", name, err)
		}
		ids[t.Name] = t.ID
		report.Tags++
	}
	return ids, nil
}

func (s *Seeder) seedProducts(ctx context.Context, products []Product, categoryIDs, tagIDs map[string]int64, report *Report) error {
	existing, err := s.products.ListProducts(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Name] = true
	}

	for _, p := range products {
		if seen[p.Name] {
			report.Existing++
			continue
		}

		req, err := productRequest(p, categoryIDs, tagIDs)
		if err != nil {
			return err
		}
		if _, err := s.products.CreateProduct(ctx, req); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		seen[p.Name] = true
		report.Products++
	}
	return nil
}

func productRequest(p Product, categoryIDs, tagIDs map[string]int64) (service.CreateProductRequest, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return service.CreateProductRequest{}, domainerrors.Validationf("seed product %q: bad price %q", p.Name, p.Price)
	}

	req := service.CreateProductRequest{
		Name:  p.Name,
		Price: price,
		Stock: &p.Stock,
	}

	catID, ok := categoryIDs[p.Category]
	if !ok {
		return req, domainerrors.NotFoundf("seed product %q: category %q is not in the data set", p.Name, p.Category)
	}
	req.CategoryID = &catID

	for _, name := range p.Tags {
		tagID, ok := tagIDs[name]
		if !ok {
			return req, domainerrors.NotFoundf("seed product %q: tag %q is not in the data set", p.Name, name)
		}
		req.TagIDs = append(req.TagIDs, tagID)
	}
	return req, nil
}

// Summary reports how many rows the catalog holds.
type Summary struct {
	Categories int
	Tags       int
	Products   int
	Untagged   int
}

// Summarize counts the current catalog.
func (s *Seeder) Summarize(ctx context.Context) (*Summary, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Categories: len(categories),
		Tags:       len(tags),
		Products:   len(products),
	}
	for _, p := range products {
		if len(p.Tags) == 0 {
			sum.Untagged++
		}
	}
	return sum, nil
}
