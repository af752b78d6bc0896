package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// maxPrice is the exclusive upper bound of a DECIMAL(10,2) column.
var maxPrice = decimal.New(1, 8)

// Product is an item for sale. It is created in exactly one category and
// carries any number of tags through ProductTag rows.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"product_name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID *int64          `json:"category_id"` // nil once orphaned by a category delete
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty"`
	Tags     []*Tag    `json:"tags,omitempty"`
}

// TagIDs returns the ids of the product's loaded tags in ascending order.
func (p *Product) TagIDs() []int64 {
	ids := make([]int64, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	slices.Sort(ids)
	return ids
}

// ProductFields is a partial set of product scalar fields.
// A nil pointer means "leave unchanged".
type ProductFields struct {
	Name       *string
	Price      *decimal.Decimal
	Stock      *int
	CategoryID *int64
}

// Wire names of the product scalar fields.
const (
	FieldProductName = "product_name"
	FieldPrice       = "price"
	FieldStock       = "stock"
	FieldCategoryID  = "category_id"
)

// Empty reports whether no field is set.
func (f ProductFields) Empty() bool {
	return f.Name == nil && f.Price == nil && f.Stock == nil && f.CategoryID == nil
}

// Normalize returns a copy with the name normalized.
func (f ProductFields) Normalize() ProductFields {
	if f.Name != nil {
		n := NormalizeName(*f.Name)
		f.Name = &n
	}
	return f
}

// Diff returns the subset of f whose values differ from p.
func (f ProductFields) Diff(p *Product) ProductFields {
	var out ProductFields
	if f.Name != nil && *f.Name != p.Name {
		out.Name = f.Name
	}
	if f.Price != nil && !f.Price.Equal(p.Price) {
		out.Price = f.Price
	}
	if f.Stock != nil && *f.Stock != p.Stock {
		out.Stock = f.Stock
	}
	if f.CategoryID != nil && (p.CategoryID == nil || *f.CategoryID != *p.CategoryID) {
		out.CategoryID = f.CategoryID
	}
	return out
}

// Names lists the wire names of the set fields in declaration order.
func (f ProductFields) Names() []string {
	names := make([]string, 0, 4)
	if f.Name != nil {
		names = append(names, FieldProductName)
	}
	if f.Price != nil {
		names = append(names, FieldPrice)
	}
	if f.Stock != nil {
		names = append(names, FieldStock)
	}
	if f.CategoryID != nil {
		names = append(names, FieldCategoryID)
	}
	return names
}

// ValidatePrice rejects negative prices, prices with more than two decimal
// places, and prices that do not fit DECIMAL(10,2).
func ValidatePrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return &FieldError{Field: FieldPrice, Reason: "must not be negative"}
	case !p.Equal(p.Round(2)):
		return &FieldError{Field: FieldPrice, Reason: "must have at most two decimal places"}
	case p.GreaterThanOrEqual(maxPrice):
		return &FieldError{Field: FieldPrice, Reason: "must be less than 100000000"}
	}
	return nil
}
