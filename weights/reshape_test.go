package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlab-ai/go-localize/heatmap"
)

// TestReshapeToConvKernel verifies the FC-to-1x1-conv rearrangement:
// kernel[0,0,f,c] must pick up weight w[c*F+f], preserving per-class
// groupings across the layout change.
func TestReshapeToConvKernel(t *testing.T) {
	// 3 classes, 2 features: class rows (1,2), (3,4), (5,6).
	w := []float32{1, 2, 3, 4, 5, 6}

	kernel, err := ReshapeToConvKernel(w, 3, 2)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 2, 3}, []int(kernel.Shape()))

	for c := 0; c < 3; c++ {
		for f := 0; f < 2; f++ {
			got, err := kernel.At(0, 0, f, c)
			require.NoError(t, err)
			assert.Equal(t, w[c*2+f], got.(float32), "kernel[0,0,%d,%d]", f, c)
		}
	}
}

// TestReshapeElementCountPreserved verifies that the rearrangement moves
// every element exactly once.
func TestReshapeElementCountPreserved(t *testing.T) {
	w := make([]float32, 5*4)
	for i := range w {
		w[i] = float32(i)
	}

	kernel, err := ReshapeToConvKernel(w, 5, 4)
	require.NoError(t, err)

	data := kernel.Data().([]float32)
	require.Len(t, data, len(w))
	seen := make(map[float32]bool, len(w))
	for _, v := range data {
		require.False(t, seen[v], "element %v duplicated", v)
		seen[v] = true
	}
}

// TestReshapeInvalidArguments covers the shape error conditions.
func TestReshapeInvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		w        []float32
		classes  int
		features int
	}{
		{name: "count mismatch", w: make([]float32, 5), classes: 2, features: 3},
		{name: "zero classes", w: nil, classes: 0, features: 3},
		{name: "negative features", w: nil, classes: 2, features: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReshapeToConvKernel(tt.w, tt.classes, tt.features)
			require.Error(t, err)
			var shapeErr *heatmap.InvalidShapeError
			assert.ErrorAs(t, err, &shapeErr)
		})
	}
}

// TestNewConvHeadParams verifies bias validation and that the bias is
// copied, not aliased.
func TestNewConvHeadParams(t *testing.T) {
	w := []float32{1, 2, 3, 4, 5, 6}
	bias := []float32{0.5, -0.5, 0}

	params, err := NewConvHeadParams(w, bias, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, params.Classes)
	assert.Equal(t, 2, params.Features)
	assert.Equal(t, bias, params.Bias)

	bias[0] = 99
	assert.InDelta(t, 0.5, params.Bias[0], 1e-9)

	_, err = NewConvHeadParams(w, []float32{0.5}, 3, 2)
	require.Error(t, err)
	var shapeErr *heatmap.InvalidShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
