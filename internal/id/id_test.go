package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixRequest)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixRequest, PrefixSeed} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+nanoidLength, "ID: %s", id)
			assert.True(t, Valid(id, prefix))
		})
	}
}

func TestValid(t *testing.T) {
	good := MustGenerate(PrefixRequest)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated", good, true},
		{"wrong prefix", MustGenerate(PrefixSeed), false},
		{"no prefix", strings.TrimPrefix(good, "req-"), false},
		{"too short", "req-abc", false},
		{"bad characters", "req-" + strings.Repeat("!", nanoidLength), false},
		{"header injection", "req-" + strings.Repeat("a", nanoidLength-1) + "\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.in, PrefixRequest))
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate(PrefixRequest)
	}
}
