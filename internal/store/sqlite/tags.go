package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, created_at, updated_at`

// scanTag scans a tag row. Any lead destinations are scanned first.
func scanTag(scanner interface{ Scan(dest ...any) error }, lead ...any) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
		updatedAt string
	)

	dest := append(lead, &t.ID, &t.Name, &createdAt, &updatedAt)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// attachTagProducts loads the products of each tag.
func (c *conn) attachTagProducts(ctx context.Context, tags []*domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(tags))
	byID := make(map[int64]*domain.Tag, len(tags))
	for _, t := range tags {
		t.Products = []*domain.Product{}
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	in, args := inClause(ids)
	rows, err := c.q.QueryContext(ctx, `
		SELECT pt.tag_id, `+productColumnsP+`
		FROM product_tags pt
		JOIN products p ON p.id = pt.product_id
		WHERE pt.tag_id IN (`+in+`)
		ORDER BY p.id ASC`, args...)
	if err != nil {
		return fmt.Errorf("load tag products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tagID int64
		p, err := scanProduct(rows, &tagID)
		if err != nil {
			return err
		}
		if t, ok := byID[tagID]; ok {
			t.Products = append(t.Products, p)
		}
	}
	return rows.Err()
}

// ListTags returns all tags ordered by id, each with its products.
func (c *conn) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := c.attachTagProducts(ctx, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag with its products.
// Returns store.ErrNotFound if the tag does not exist.
func (c *conn) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	if err != nil {
		return nil, err
	}

	if err := c.attachTagProducts(ctx, []*domain.Tag{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// MissingTagIDs returns the distinct ids, ascending, that name no tag.
func (c *conn) MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in, args := inClause(ids)
	rows, err := c.q.QueryContext(ctx,
		`SELECT id FROM tags WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}
	slices.Sort(missing)
	return missing, nil
}

// CreateTag inserts a tag and sets its ID.
// Returns store.ErrAlreadyExists on duplicate name.
func (c *conn) CreateTag(ctx context.Context, t *domain.Tag) error {
	res, err := c.q.ExecContext(ctx, `
		INSERT INTO tags (name, created_at, updated_at)
		VALUES (?, ?, ?)`,
		t.Name,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return err
	}

	t.ID, err = res.LastInsertId()
	return err
}

// UpdateTag writes the tag's name and updated_at.
func (c *conn) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := c.q.ExecContext(ctx,
		`UPDATE tags SET name = ?, updated_at = ? WHERE id = ?`,
		t.Name, formatTime(t.UpdatedAt), t.ID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteTag removes a tag. Its product_tags rows cascade.
func (c *conn) DeleteTag(ctx context.Context, id int64) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
