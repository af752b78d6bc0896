package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, name, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&c.ID, &c.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories ordered by id, each with its products.
func (c *conn) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	byID := make(map[int64]*domain.Category)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cat.Products = []*domain.Product{}
		categories = append(categories, cat)
		byID[cat.ID] = cat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, err := c.selectProducts(ctx, `WHERE category_id IS NOT NULL ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}
	for _, p := range products {
		if cat, ok := byID[*p.CategoryID]; ok {
			cat.Products = append(cat.Products, p)
		}
	}

	return categories, nil
}

// GetCategory retrieves a category with its products.
// Returns store.ErrNotFound if the category does not exist.
func (c *conn) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("category not found")
	}
	if err != nil {
		return nil, err
	}

	cat.Products, err = c.selectProducts(ctx, `WHERE category_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get category products: %w", err)
	}
	return cat, nil
}

// CategoryExists reports whether a category with the id exists.
func (c *conn) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := c.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// CountProductsInCategory counts the products referencing the category.
func (c *conn) CountProductsInCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := c.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}

// CreateCategory inserts a category and sets its ID.
// Returns store.ErrAlreadyExists on duplicate name.
func (c *conn) CreateCategory(ctx context.Context, cat *domain.Category) error {
	res, err := c.q.ExecContext(ctx, `
		INSERT INTO categories (name, created_at, updated_at)
		VALUES (?, ?, ?)`,
		cat.Name,
		formatTime(cat.CreatedAt),
		formatTime(cat.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return err
	}

	cat.ID, err = res.LastInsertId()
	return err
}

// UpdateCategory writes the category's name and updated_at.
func (c *conn) UpdateCategory(ctx context.Context, cat *domain.Category) error {
	res, err := c.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		cat.Name, formatTime(cat.UpdatedAt), cat.ID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteCategory removes a category. Products still referencing it have
// their category_id cleared by the foreign key.
func (c *conn) DeleteCategory(ctx context.Context, id int64) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// OrphanProducts clears category_id on every product of the category.
func (c *conn) OrphanProducts(ctx context.Context, categoryID int64) (int, error) {
	res, err := c.q.ExecContext(ctx,
		`UPDATE products SET category_id = NULL, updated_at = ? WHERE category_id = ?`,
		formatTime(time.Now()), categoryID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// DeleteProductsInCategory deletes every product of the category.
// Their product_tags rows cascade.
func (c *conn) DeleteProductsInCategory(ctx context.Context, categoryID int64) (int, error) {
	res, err := c.q.ExecContext(ctx, `DELETE FROM products WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
