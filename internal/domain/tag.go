package domain

import "time"

// Tag is a label shared across products. Tag names are unique.
type Tag struct {
	ID        int64      `json:"id"`
	Name      string     `json:"tag_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Products  []*Product `json:"products,omitempty"` // Populated by reads that include products
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// ProductTag is one association row between a product and a tag.
// Rows are only ever inserted or deleted, never edited in place.
type ProductTag struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	TagID     int64 `json:"tag_id"`
}
