package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// ListProductTags returns the association rows of a product ordered by row id.
func (c *conn) ListProductTags(ctx context.Context, productID int64) ([]domain.ProductTag, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, product_id, tag_id FROM product_tags
		WHERE product_id = ?
		ORDER BY id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProductTag{}
	for rows.Next() {
		var pt domain.ProductTag
		if err := rows.Scan(&pt.ID, &pt.ProductID, &pt.TagID); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// CreateProductTag inserts one association row and returns its id.
// Returns store.ErrAlreadyExists if the pair is already linked and
// store.ErrInvalidInput if the product or tag does not exist.
func (c *conn) CreateProductTag(ctx context.Context, productID, tagID int64) (int64, error) {
	res, err := c.q.ExecContext(ctx,
		`INSERT INTO product_tags (product_id, tag_id) VALUES (?, ?)`,
		productID, tagID)
	if isUniqueViolation(err) {
		return 0, store.ErrAlreadyExists.WithCause(err)
	}
	if isForeignKeyViolation(err) {
		return 0, store.ErrInvalidInput.WithCause(err)
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteProductTags deletes association rows by row id.
// Returns store.ErrNotFound if any of the rows was already gone.
func (c *conn) DeleteProductTags(ctx context.Context, rowIDs []int64) error {
	if len(rowIDs) == 0 {
		return nil
	}

	in, args := inClause(rowIDs)
	res, err := c.q.ExecContext(ctx,
		`DELETE FROM product_tags WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(rowIDs) {
		return fmt.Errorf("deleted %d of %d product_tags rows: %w", n, len(rowIDs), store.ErrNotFound)
	}
	return nil
}
