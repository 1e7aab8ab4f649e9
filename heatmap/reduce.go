package heatmap

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ReduceClassSubset collapses a probability tensor of shape (H, W, C)
// into a heatmap by summing, at every location, the probability mass of
// the given class subset.
//
// Ontology lookups legitimately return unmapped entries, so indices
// outside [0, C) are filtered here rather than rejected. Duplicate
// indices count once: the subset is a set.
//
// Arguments:
//   - p: A probability tensor of shape (H, W, C) with the class axis
//     innermost, as produced by SpatialSoftmaxLast.
//   - subset: Class indices to aggregate; may contain out-of-range or
//     negative placeholder entries.
//
// Returns:
//   - *Heatmap: The (H, W) aggregated probability mass.
//   - error: An *InvalidShapeError for non-3D input, or an
//     *EmptySubsetError when no valid index remains after filtering.
func ReduceClassSubset(p *tensor.Dense, subset []int) (*Heatmap, error) {
	shape := p.Shape()
	if len(shape) != 3 {
		return nil, &InvalidShapeError{Shape: shape, Axis: -1, Want: "a 3D (H, W, C) tensor"}
	}
	data, ok := p.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("class-subset reduce: expected float32 backing, got %T", p.Data())
	}

	rows, cols, classes := shape[0], shape[1], shape[2]

	seen := make(map[int]struct{}, len(subset))
	valid := make([]int, 0, len(subset))
	for _, k := range subset {
		if k < 0 || k >= classes {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		valid = append(valid, k)
	}
	if len(valid) == 0 {
		return nil, &EmptySubsetError{Classes: classes, Given: len(subset)}
	}

	out := &Heatmap{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			base := (i*cols + j) * classes
			var sum float32
			for _, k := range valid {
				sum += data[base+k]
			}
			out.Data[i*cols+j] = sum
		}
	}
	return out, nil
}
