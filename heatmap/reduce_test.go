package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

// TestReduceFullRangeSumsToOne verifies that reducing over the entire
// class range yields 1 everywhere, since each location is a distribution.
func TestReduceFullRangeSumsToOne(t *testing.T) {
	probs, err := SpatialSoftmaxLast(randomScores(t, 4, 3, 5, 7))
	require.NoError(t, err)

	subset := []int{0, 1, 2, 3, 4}
	hm, err := ReduceClassSubset(probs, subset)
	require.NoError(t, err)
	require.Equal(t, 4, hm.Rows)
	require.Equal(t, 3, hm.Cols)

	for i, v := range hm.Data {
		assert.InDelta(t, 1.0, v, 1e-5, "location %d", i)
	}
}

// TestReduceIgnoresInvalidIndexes verifies that out-of-range and
// placeholder indices behave as if they were removed from the subset.
func TestReduceIgnoresInvalidIndexes(t *testing.T) {
	probs, err := SpatialSoftmaxLast(randomScores(t, 2, 2, 3, 8))
	require.NoError(t, err)

	clean, err := ReduceClassSubset(probs, []int{1})
	require.NoError(t, err)
	sparse, err := ReduceClassSubset(probs, []int{1, 5, -1, 99})
	require.NoError(t, err)

	assert.Equal(t, clean.Data, sparse.Data)
}

// TestReduceDeduplicatesIndexes verifies set semantics: each class
// counts once no matter how often it appears.
func TestReduceDeduplicatesIndexes(t *testing.T) {
	probs, err := SpatialSoftmaxLast(randomScores(t, 2, 2, 4, 9))
	require.NoError(t, err)

	unique, err := ReduceClassSubset(probs, []int{1, 2})
	require.NoError(t, err)
	repeated, err := ReduceClassSubset(probs, []int{1, 1, 2, 2, 1})
	require.NoError(t, err)

	assert.Equal(t, unique.Data, repeated.Data)
}

// TestReduceEmptySubset covers the error taxonomy for reductions with no
// usable class index.
func TestReduceEmptySubset(t *testing.T) {
	probs, err := SpatialSoftmaxLast(randomScores(t, 2, 2, 3, 10))
	require.NoError(t, err)

	tests := []struct {
		name   string
		subset []int
	}{
		{name: "empty", subset: nil},
		{name: "all placeholders", subset: []int{-1, -1}},
		{name: "all out of range", subset: []int{3, 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReduceClassSubset(probs, tt.subset)
			require.Error(t, err)
			var emptyErr *EmptySubsetError
			assert.ErrorAs(t, err, &emptyErr)
		})
	}
}

// TestReduceRejectsNonTensor verifies the shape guard.
func TestReduceRejectsNonTensor(t *testing.T) {
	flat := tensor.New(tensor.WithShape(4, 5), tensor.WithBacking(make([]float32, 20)))

	_, err := ReduceClassSubset(flat, []int{0})
	require.Error(t, err)
	var shapeErr *InvalidShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
