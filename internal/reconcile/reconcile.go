// Package reconcile computes the association rows to add and remove so a
// product's stored tag set matches a desired tag set.
//
// Diff is pure. Callers read the current rows and apply the returned Plan
// inside the same transaction, deleting ToRemove before inserting ToAdd.
package reconcile

import (
	"slices"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Plan is the minimal change set turning the current rows into the desired set.
type Plan struct {
	ToAdd    []int64 // tag ids needing a new row, ascending
	ToRemove []int64 // row ids to delete, ascending
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Diff compares the current association rows against the desired tag ids.
//
// Duplicates in desired collapse to a single addition. The current rows are
// expected to carry distinct tag ids; if they do not, every row of a desired
// tag is kept and only undesired rows are removed.
func Diff(current []domain.ProductTag, desired []int64) Plan {
	want := make(map[int64]struct{}, len(desired))
	for _, tagID := range desired {
		want[tagID] = struct{}{}
	}

	have := make(map[int64]struct{}, len(current))
	var plan Plan
	for _, row := range current {
		have[row.TagID] = struct{}{}
		if _, ok := want[row.TagID]; !ok {
			plan.ToRemove = append(plan.ToRemove, row.ID)
		}
	}

	for tagID := range want {
		if _, ok := have[tagID]; !ok {
			plan.ToAdd = append(plan.ToAdd, tagID)
		}
	}

	slices.Sort(plan.ToAdd)
	slices.Sort(plan.ToRemove)
	return plan
}

// Distinct returns the distinct ids in ascending order.
func Distinct(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// TagIDs returns the distinct tag ids carried by rows, ascending.
func TagIDs(rows []domain.ProductTag) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TagID)
	}
	return Distinct(ids)
}

// Apply returns the rows that result from executing plan against current:
// rows in ToRemove are dropped, then one row per ToAdd tag is appended with
// an id from newRowID. productID is stamped onto the new rows.
func Apply(current []domain.ProductTag, plan Plan, productID int64, newRowID func() int64) []domain.ProductTag {
	out := make([]domain.ProductTag, 0, len(current)+len(plan.ToAdd))
	for _, row := range current {
		if _, found := slices.BinarySearch(plan.ToRemove, row.ID); found {
			continue
		}
		out = append(out, row)
	}
	for _, tagID := range plan.ToAdd {
		out = append(out, domain.ProductTag{ID: newRowID(), ProductID: productID, TagID: tagID})
	}
	return out
}
