package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, name, price, stock, category_id, created_at, updated_at`

// productColumnsP is productColumns qualified with the "p" alias for joins.
const productColumnsP = `p.id, p.name, p.price, p.stock, p.category_id, p.created_at, p.updated_at`

// scanProduct scans a product row. Any lead destinations are scanned first,
// for joins that select a key ahead of the product columns.
func scanProduct(scanner interface{ Scan(dest ...any) error }, lead ...any) (*domain.Product, error) {
	var (
		p          domain.Product
		price      string
		categoryID sql.NullInt64
		createdAt  string
		updatedAt  string
	)

	dest := append(lead, &p.ID, &p.Name, &price, &p.Stock, &categoryID, &createdAt, &updatedAt)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// formatPrice stores prices with exactly two decimal places.
func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// selectProducts returns bare products matching the trailing SQL clause.
func (c *conn) selectProducts(ctx context.Context, clause string, args ...any) ([]*domain.Product, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// attachRelations loads the category and tags of each product.
func (c *conn) attachRelations(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	productIDs := make([]int64, 0, len(products))
	categoryIDs := make([]int64, 0, len(products))
	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		p.Tags = []*domain.Tag{}
		productIDs = append(productIDs, p.ID)
		byID[p.ID] = p
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
	}

	if len(categoryIDs) > 0 {
		in, args := inClause(categoryIDs)
		rows, err := c.q.QueryContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE id IN (`+in+`)`, args...)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		categories := make(map[int64]*domain.Category)
		for rows.Next() {
			cat, err := scanCategory(rows)
			if err != nil {
				rows.Close()
				return err
			}
			categories[cat.ID] = cat
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, p := range products {
			if p.CategoryID != nil {
				p.Category = categories[*p.CategoryID]
			}
		}
	}

	in, args := inClause(productIDs)
	rows, err := c.q.QueryContext(ctx, `
		SELECT pt.product_id, t.id, t.name, t.created_at, t.updated_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id IN (`+in+`)
		ORDER BY t.id ASC`, args...)
	if err != nil {
		return fmt.Errorf("load product tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		t, err := scanTag(rows, &productID)
		if err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return rows.Err()
}

// ListProducts returns all products ordered by id with category and tags.
func (c *conn) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := c.selectProducts(ctx, `ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	if err := c.attachRelations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct retrieves a product with its category and tags.
// Returns store.ErrNotFound if the product does not exist.
func (c *conn) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("product not found")
	}
	if err != nil {
		return nil, err
	}

	if err := c.attachRelations(ctx, []*domain.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct inserts a product and sets its ID.
// Returns store.ErrInvalidInput if the category does not exist.
func (c *conn) CreateProduct(ctx context.Context, p *domain.Product) error {
	var categoryID sql.NullInt64
	if p.CategoryID != nil {
		categoryID = sql.NullInt64{Int64: *p.CategoryID, Valid: true}
	}

	res, err := c.q.ExecContext(ctx, `
		INSERT INTO products (name, price, stock, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name,
		formatPrice(p.Price),
		p.Stock,
		categoryID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput.WithCause(err)
	}
	if err != nil {
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

// UpdateProductFields writes the set fields and bumps updated_at. With no
// fields set it only bumps updated_at.
// Returns store.ErrNotFound if the product does not exist and
// store.ErrInvalidInput if the category does not exist.
func (c *conn) UpdateProductFields(ctx context.Context, id int64, fields domain.ProductFields) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}
	if fields.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, formatPrice(*fields.Price))
	}
	if fields.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *fields.Stock)
	}
	if fields.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *fields.CategoryID)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id)

	res, err := c.q.ExecContext(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput.WithCause(err)
	}
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteProduct removes a product. Its product_tags rows cascade.
func (c *conn) DeleteProduct(ctx context.Context, id int64) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
