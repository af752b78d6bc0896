package domain

import (
	"fmt"
	"time"
)

// Category groups products. Category names are unique.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"category_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Products  []*Product `json:"products,omitempty"` // Populated by reads that include products
}

// Touch updates the UpdatedAt timestamp.
func (c *Category) Touch() {
	c.UpdatedAt = time.Now()
}

// CategoryDeletePolicy decides what happens to a category's products when
// the category is deleted.
type CategoryDeletePolicy string

const (
	// DeletePolicyOrphan clears category_id on the products and keeps them.
	DeletePolicyOrphan CategoryDeletePolicy = "orphan"
	// DeletePolicyCascade deletes the products together with their tag associations.
	DeletePolicyCascade CategoryDeletePolicy = "cascade"
	// DeletePolicyRestrict refuses to delete a category that still has products.
	DeletePolicyRestrict CategoryDeletePolicy = "restrict"
)

// ParseCategoryDeletePolicy converts a configuration string to a policy.
// An empty string selects DeletePolicyOrphan.
func ParseCategoryDeletePolicy(s string) (CategoryDeletePolicy, error) {
	switch CategoryDeletePolicy(s) {
	case "", DeletePolicyOrphan:
		return DeletePolicyOrphan, nil
	case DeletePolicyCascade:
		return DeletePolicyCascade, nil
	case DeletePolicyRestrict:
		return DeletePolicyRestrict, nil
	default:
		return "", fmt.Errorf("unknown category delete policy %q (must be orphan, cascade, or restrict)", s)
	}
}
