package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/block"
)

func testGeometry() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		Margin:       36,
		HeaderHeight: 120,
		FooterHeight: 18,
	}
}

func TestGeometry(t *testing.T) {
	geo := testGeometry()
	assert.InDelta(t, 595.28-72, geo.ContentWidth(), 0.001)
	assert.InDelta(t, 841.89-72-120-18, geo.ContentHeight(), 0.001)
}

func TestColumnWidths(t *testing.T) {
	geo := testGeometry()

	t.Run("item row shape", func(t *testing.T) {
		w := columnWidths(geo, 6)
		require.Len(t, w, 6)
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, geo.ContentWidth(), sum, 0.001)
		assert.Greater(t, w[0], w[1], "description column is widest")
	})

	t.Run("statement row shape", func(t *testing.T) {
		w := columnWidths(geo, 5)
		require.Len(t, w, 5)
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, geo.ContentWidth(), sum, 0.001)
	})

	t.Run("unknown shape splits evenly", func(t *testing.T) {
		w := columnWidths(geo, 3)
		require.Len(t, w, 3)
		assert.InDelta(t, w[0], w[1], 0.001)
	})

	t.Run("degenerate", func(t *testing.T) {
		assert.Nil(t, columnWidths(geo, 0))
	})
}

func TestMeasure(t *testing.T) {
	r := NewRenderer(testGeometry(), "test-render", nil)

	t.Run("fixed heights", func(t *testing.T) {
		blocks := []block.Block{
			{Type: block.TypeSectionHeader, Cells: []string{"Section"}, Index: 0},
			{Type: block.TypeSectionTotal, Cells: []string{"Section total", "$10.00"}, Index: 1},
			{Type: block.TypeSignature, Cells: []string{"Authorized signature", "Date"}, Index: 2},
		}
		measured := r.Measure(blocks)
		require.Len(t, measured, 3)
		assert.InDelta(t, headerFontSize*1.8+blockPadY, measured[0].Height, 0.001)
		assert.InDelta(t, lineHeight+2*blockPadY, measured[1].Height, 0.001)
		assert.InDelta(t, signatureHeight, measured[2].Height, 0.001)
		for _, m := range measured {
			assert.False(t, m.Overflowed)
		}
	})

	t.Run("grand total grows with rows", func(t *testing.T) {
		short := block.Block{Type: block.TypeGrandTotal, Cells: []string{"Grand total", "$1.00"}}
		long := block.Block{Type: block.TypeGrandTotal, Cells: []string{
			"Subtotal", "$1.00", "Tax", "$0.10", "Grand total", "$1.10",
		}}
		m := r.Measure([]block.Block{short, long})
		assert.Less(t, m[0].Height, m[1].Height)
	})

	t.Run("wrapping row records line boundaries", func(t *testing.T) {
		desc := strings.Repeat("a long description that must wrap ", 8)
		b := block.Block{Type: block.TypeRow, Cells: []string{desc, "1", "pcs", "$1.00", "0%", "$1.00"}}
		m := r.Measure([]block.Block{b})
		require.Len(t, m, 1)
		require.Greater(t, len(m[0].Boundaries), 1, "long description wraps over several lines")
		for i := 1; i < len(m[0].Boundaries); i++ {
			assert.Greater(t, m[0].Boundaries[i], m[0].Boundaries[i-1], "boundaries are cumulative")
		}
		assert.InDelta(t, float64(len(m[0].Boundaries))*lineHeight+blockPadY, m[0].Height, 0.001)
	})

	t.Run("unmeasurable block gets placeholder height", func(t *testing.T) {
		b := block.Block{Type: block.Type(99), Index: 7}
		m := r.Measure([]block.Block{b})
		require.Len(t, m, 1, "a failed measurement never drops the block")
		assert.True(t, m[0].Overflowed)
		assert.InDelta(t, r.Geo.ContentHeight(), m[0].Height, 0.001)
		assert.Nil(t, m[0].Boundaries)
	})

	t.Run("measurement is repeatable", func(t *testing.T) {
		b := block.Block{Type: block.TypeRow, Cells: []string{"Widget", "1", "pcs", "$1.00", "0%", "$1.00"}}
		m1 := r.Measure([]block.Block{b})
		m2 := r.Measure([]block.Block{b})
		assert.Equal(t, m1, m2)
	})
}

func TestMeasurementErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	err := &MeasurementError{BlockIndex: 3, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "block 3")
}

func TestTimeoutErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	err := &TimeoutError{Stage: "logo fetch", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "logo fetch")
}
