package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHeatmap(t *testing.T, rows, cols int, data []float32) *Heatmap {
	t.Helper()
	require.Len(t, data, rows*cols)
	return &Heatmap{Rows: rows, Cols: cols, Data: data}
}

// TestFuseGeometricMean exercises the documented three-map scenario,
// including zero propagation at (0,0).
func TestFuseGeometricMean(t *testing.T) {
	maps := []*Heatmap{
		mustHeatmap(t, 2, 2, []float32{1, 1, 1, 1}),
		mustHeatmap(t, 2, 2, []float32{0.5, 0.5, 0.5, 0.5}),
		mustHeatmap(t, 2, 2, []float32{0, 1, 1, 1}),
	}

	fused, err := FuseScales(maps, 2, 2)
	require.NoError(t, err)

	// Cube roots of the per-location products.
	assert.InDelta(t, 0.0, fused.At(0, 0), 1e-6)
	assert.InDelta(t, 0.7937, fused.At(0, 1), 1e-4)
	assert.InDelta(t, 0.7937, fused.At(1, 0), 1e-4)
	assert.InDelta(t, 0.7937, fused.At(1, 1), 1e-4)
}

// TestFuseSingleMapIsIdentity verifies the n=1 degenerate case: the
// input comes back unchanged, as a fresh copy.
func TestFuseSingleMapIsIdentity(t *testing.T) {
	src := mustHeatmap(t, 2, 3, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})

	fused, err := FuseScales([]*Heatmap{src}, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, src.Data, fused.Data)

	// The result must not alias the input.
	fused.Data[0] = 9
	assert.InDelta(t, 0.1, src.Data[0], 1e-6)
}

// TestFuseScalesMonotonically verifies that scaling every input by a
// factor scales the fused output by the same factor.
func TestFuseScalesMonotonically(t *testing.T) {
	base := []*Heatmap{
		mustHeatmap(t, 2, 2, []float32{0.9, 0.4, 0.6, 0.8}),
		mustHeatmap(t, 2, 2, []float32{0.7, 0.5, 0.3, 0.9}),
	}
	const alpha = float32(0.5)
	scaled := make([]*Heatmap, len(base))
	for i, h := range base {
		s := h.Clone()
		for j := range s.Data {
			s.Data[j] *= alpha
		}
		scaled[i] = s
	}

	fusedBase, err := FuseScales(base, 2, 2)
	require.NoError(t, err)
	fusedScaled, err := FuseScales(scaled, 2, 2)
	require.NoError(t, err)

	for i := range fusedBase.Data {
		assert.InDelta(t, alpha*fusedBase.Data[i], fusedScaled.Data[i], 1e-5)
	}
}

// TestFuseMixedShapes fuses constant maps of different shapes; the
// resampler preserves constants, so the result is the geometric mean of
// the constants.
func TestFuseMixedShapes(t *testing.T) {
	big := mustHeatmap(t, 4, 4, make([]float32, 16))
	for i := range big.Data {
		big.Data[i] = 0.2
	}
	small := mustHeatmap(t, 2, 2, []float32{0.8, 0.8, 0.8, 0.8})

	fused, err := FuseScales([]*Heatmap{big, small}, 3, 3)
	require.NoError(t, err)
	require.Equal(t, 3, fused.Rows)
	require.Equal(t, 3, fused.Cols)

	for _, v := range fused.Data {
		assert.InDelta(t, 0.4, v, 1e-5) // sqrt(0.2 * 0.8)
	}
}

// TestFuseErrors covers the failure taxonomy.
func TestFuseErrors(t *testing.T) {
	_, err := FuseScales(nil, 2, 2)
	require.Error(t, err)
	var mismatchErr *ShapeMismatchError
	assert.ErrorAs(t, err, &mismatchErr)

	src := mustHeatmap(t, 2, 2, []float32{1, 1, 1, 1})
	_, err = FuseScales([]*Heatmap{src}, 0, 2)
	require.Error(t, err)
	var shapeErr *InvalidShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
