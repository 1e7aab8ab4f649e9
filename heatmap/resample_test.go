package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResampleSameShapeCopies verifies the no-op path returns an equal,
// non-aliased grid.
func TestResampleSameShapeCopies(t *testing.T) {
	src := mustHeatmap(t, 2, 2, []float32{0.1, 0.2, 0.3, 0.4})

	out := src.Resample(2, 2)
	require.Equal(t, src.Data, out.Data)

	out.Data[0] = 9
	assert.InDelta(t, 0.1, src.Data[0], 1e-6)
}

// TestResamplePreservesConstants verifies that the filter weights form a
// convex combination: constant fields survive any shape change exactly.
func TestResamplePreservesConstants(t *testing.T) {
	src := mustHeatmap(t, 3, 5, make([]float32, 15))
	for i := range src.Data {
		src.Data[i] = 0.37
	}

	tests := []struct {
		name       string
		rows, cols int
	}{
		{name: "upsample", rows: 9, cols: 20},
		{name: "downsample", rows: 2, cols: 2},
		{name: "mixed", rows: 6, cols: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := src.Resample(tt.rows, tt.cols)
			require.Equal(t, tt.rows, out.Rows)
			require.Equal(t, tt.cols, out.Cols)
			for _, v := range out.Data {
				assert.InDelta(t, 0.37, v, 1e-6)
			}
		})
	}
}

// TestResampleBoundsRange verifies that output values never escape the
// input range, which is what keeps probabilities valid.
func TestResampleBoundsRange(t *testing.T) {
	src := mustHeatmap(t, 4, 4, []float32{
		0, 1, 0, 1,
		1, 0, 1, 0,
		0, 1, 0, 1,
		1, 0, 1, 0,
	})

	for _, shape := range [][2]int{{2, 2}, {8, 8}, {3, 7}} {
		out := src.Resample(shape[0], shape[1])
		for _, v := range out.Data {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

// TestResampleUpsampleValues checks exact bilinear values on a 1x2 ramp.
func TestResampleUpsampleValues(t *testing.T) {
	src := mustHeatmap(t, 1, 2, []float32{0, 1})

	out := src.Resample(1, 4)
	require.Equal(t, []float32{0, 0.25, 0.75, 1}, out.Data)
}

// TestResampleDownsampleAntiAliases checks exact anti-aliased values on
// a 1x4 step edge: the widened kernel averages across the edge instead
// of point-sampling it.
func TestResampleDownsampleAntiAliases(t *testing.T) {
	src := mustHeatmap(t, 1, 4, []float32{0, 0, 1, 1})

	out := src.Resample(1, 2)
	require.Len(t, out.Data, 2)
	assert.InDelta(t, 1.0/7.0, out.Data[0], 1e-4)
	assert.InDelta(t, 6.0/7.0, out.Data[1], 1e-4)
}
