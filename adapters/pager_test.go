package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/mvsfs/internal/mocks"
)

func TestSlicePager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entries  int
		n        int
		expSizes []int
	}{
		{"empty", 0, 2, nil},
		{"exact_pages", 4, 2, []int{2, 2}},
		{"partial_last", 5, 2, []int{2, 2, 1}},
		{"larger_than_total", 3, 10, []int{3}},
		{"non_positive_takes_all", 3, 0, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			names := make([]string, tt.entries)
			for i := range names {
				names[i] = string(rune('A' + i))
			}
			p := newSlicePager(mocks.NamedEntries(names...))

			var sizes []int
			for p.HasNext() {
				page, err := p.Next(tt.n)
				require.NoError(t, err)
				sizes = append(sizes, len(page))
			}
			assert.Equal(t, tt.expSizes, sizes)
		})
	}
}
