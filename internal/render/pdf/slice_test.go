package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceOffsets(t *testing.T) {
	t.Run("cuts at line boundaries", func(t *testing.T) {
		boundaries := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
		cuts, fallback := sliceOffsets(100, 30, 40, boundaries)
		assert.False(t, fallback)
		assert.Equal(t, []float64{30, 70, 100}, cuts)
	})

	t.Run("picks greatest boundary inside each slot", func(t *testing.T) {
		boundaries := []float64{25, 55, 85}
		cuts, fallback := sliceOffsets(100, 30, 40, boundaries)
		assert.False(t, fallback)
		assert.Equal(t, []float64{25, 55, 85, 100}, cuts)
	})

	t.Run("fixed-height fallback without boundaries", func(t *testing.T) {
		cuts, fallback := sliceOffsets(100, 30, 40, nil)
		assert.True(t, fallback)
		assert.Equal(t, []float64{30, 70, 100}, cuts)
	})

	t.Run("single huge line cannot stall", func(t *testing.T) {
		// One boundary at the very end: every slot is boundary-free, the
		// cut falls at the slot limit instead of looping.
		cuts, fallback := sliceOffsets(100, 30, 40, []float64{100})
		assert.False(t, fallback)
		require.NotEmpty(t, cuts)
		assert.Equal(t, 100.0, cuts[len(cuts)-1])
	})

	t.Run("fits first slot entirely", func(t *testing.T) {
		cuts, _ := sliceOffsets(25, 30, 40, []float64{10, 20, 25})
		assert.Equal(t, []float64{25}, cuts)
	})

	t.Run("zero first slot uses full pages", func(t *testing.T) {
		cuts, fallback := sliceOffsets(80, 0, 40, nil)
		assert.True(t, fallback)
		assert.Equal(t, []float64{40, 80}, cuts)
	})

	t.Run("degenerate total", func(t *testing.T) {
		cuts, _ := sliceOffsets(0, 30, 40, nil)
		assert.Empty(t, cuts)
	})

	t.Run("slices cover the block exactly once", func(t *testing.T) {
		cuts, _ := sliceOffsets(500, 120, 200, []float64{50, 110, 180, 260, 330, 410, 470, 500})
		prev := 0.0
		for _, c := range cuts {
			assert.Greater(t, c, prev, "cuts strictly increase")
			prev = c
		}
		assert.Equal(t, 500.0, cuts[len(cuts)-1], "last cut closes the block")
	})
}
