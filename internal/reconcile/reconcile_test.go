package reconcile

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func rows(pairs ...[2]int64) []domain.ProductTag {
	out := make([]domain.ProductTag, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.ProductTag{ID: p[0], ProductID: 1, TagID: p[1]})
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		current    []domain.ProductTag
		desired    []int64
		wantAdd    []int64
		wantRemove []int64
	}{
		{
			name:       "swap one tag",
			current:    rows([2]int64{1, 3}, [2]int64{2, 7}),
			desired:    []int64{7, 8},
			wantAdd:    []int64{8},
			wantRemove: []int64{1},
		},
		{
			name:    "no current rows",
			current: nil,
			desired: []int64{3, 7, 8},
			wantAdd: []int64{3, 7, 8},
		},
		{
			name:       "empty desired detaches everything",
			current:    rows([2]int64{5, 1}),
			desired:    []int64{},
			wantRemove: []int64{5},
		},
		{
			name:    "duplicate desired ids collapse",
			current: rows([2]int64{1, 3}),
			desired: []int64{3, 3},
		},
		{
			name:    "duplicates of a missing tag add once",
			current: nil,
			desired: []int64{4, 4, 4},
			wantAdd: []int64{4},
		},
		{
			name:       "outputs are sorted",
			current:    rows([2]int64{9, 1}, [2]int64{2, 2}, [2]int64{5, 3}),
			desired:    []int64{30, 10, 20},
			wantAdd:    []int64{10, 20, 30},
			wantRemove: []int64{2, 5, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Diff(tt.current, tt.desired)
			assert.ElementsMatch(t, tt.wantAdd, plan.ToAdd)
			assert.ElementsMatch(t, tt.wantRemove, plan.ToRemove)
			assert.True(t, isSorted(plan.ToAdd))
			assert.True(t, isSorted(plan.ToRemove))
		})
	}
}

func TestDiff_NoOpWhenSetsMatch(t *testing.T) {
	plan := Diff(rows([2]int64{1, 3}, [2]int64{2, 7}), []int64{7, 3, 7})
	assert.True(t, plan.Empty())
}

func TestDiff_Deterministic(t *testing.T) {
	current := rows([2]int64{1, 3}, [2]int64{2, 7}, [2]int64{3, 11})
	desired := []int64{11, 12, 13, 12}

	first := Diff(current, desired)
	for range 20 {
		assert.Equal(t, first, Diff(current, desired))
	}
}

// TestDiff_Laws checks set equality, idempotence and minimality on random inputs.
func TestDiff_Laws(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 500 {
		current := randomRows(r)
		desired := randomIDs(r)

		plan := Diff(current, desired)

		next := int64(1000)
		applied := Apply(current, plan, 1, func() int64 { next++; return next })

		if !assert.ElementsMatch(t, Distinct(desired), TagIDs(applied), "case %d: set equality", i) {
			t.Logf("current=%v desired=%v plan=%+v", current, desired, plan)
		}
		assert.Len(t, applied, len(Distinct(desired)), "case %d: one row per tag", i)
		assert.True(t, Diff(applied, desired).Empty(), "case %d: idempotence", i)

		// Minimality: rows whose tag stays are never touched.
		before := TagIDs(current)
		for _, tagID := range plan.ToAdd {
			assert.NotContains(t, before, tagID, "case %d: re-added a kept tag", i)
		}
		wanted := Distinct(desired)
		for _, row := range current {
			if slices.Contains(plan.ToRemove, row.ID) {
				assert.NotContains(t, wanted, row.TagID, "case %d: removed a desired tag", i)
			}
		}
	}
}

func TestApply(t *testing.T) {
	current := rows([2]int64{1, 3}, [2]int64{2, 7})
	plan := Plan{ToAdd: []int64{8}, ToRemove: []int64{1}}

	next := int64(10)
	got := Apply(current, plan, 1, func() int64 { next++; return next })

	assert.Equal(t, []domain.ProductTag{
		{ID: 2, ProductID: 1, TagID: 7},
		{ID: 11, ProductID: 1, TagID: 8},
	}, got)
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, Distinct([]int64{3, 1, 2, 3, 1}))
	assert.Empty(t, Distinct(nil))

	in := []int64{2, 1}
	Distinct(in)
	assert.Equal(t, []int64{2, 1}, in, "input must not be reordered")
}

func randomRows(r *rand.Rand) []domain.ProductTag {
	n := r.IntN(8)
	seen := make(map[int64]bool)
	out := make([]domain.ProductTag, 0, n)
	for i := range n {
		tagID := int64(r.IntN(12) + 1)
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		out = append(out, domain.ProductTag{ID: int64(i + 1), ProductID: 1, TagID: tagID})
	}
	return out
}

func randomIDs(r *rand.Rand) []int64 {
	n := r.IntN(10)
	out := make([]int64, 0, n)
	for range n {
		out = append(out, int64(r.IntN(12)+1))
	}
	return out
}

func isSorted(ids []int64) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			return false
		}
	}
	return true
}
