package heatmap

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// SpatialSoftmax normalizes the class scores of a 3D score tensor into a
// probability distribution independently at every spatial location. The
// class axis is a free parameter; the other two axes are treated as the
// spatial grid.
//
// The per-location maximum is subtracted before exponentiation. This is
// a numerical-stability requirement, not an optimization: raw classifier
// scores routinely exceed the float32 exponent range.
//
// Arguments:
//   - t: A 3D float32 tensor of shape (H, W, C) in any axis order.
//   - classAxis: The axis enumerating class scores, in [0, 3).
//
// Returns:
//   - *tensor.Dense: A tensor of identical shape whose values along
//     classAxis are non-negative and sum to 1 at every location.
//   - error: An *InvalidShapeError for non-3D input or an out-of-range
//     axis.
func SpatialSoftmax(t *tensor.Dense, classAxis int) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, &InvalidShapeError{Shape: shape, Axis: classAxis, Want: "a 3D (spatial x spatial x class) tensor"}
	}
	if classAxis < 0 || classAxis >= len(shape) {
		return nil, &InvalidShapeError{Shape: shape, Axis: classAxis, Want: "class axis in [0, 3)"}
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("spatial softmax: expected float32 backing, got %T", t.Data())
	}

	strides := t.Strides()
	var spatial [2]int
	n := 0
	for axis := 0; axis < 3; axis++ {
		if axis != classAxis {
			spatial[n] = axis
			n++
		}
	}
	n0, n1, nc := shape[spatial[0]], shape[spatial[1]], shape[classAxis]
	s0, s1, sc := strides[spatial[0]], strides[spatial[1]], strides[classAxis]

	out := make([]float32, len(data))
	for i := 0; i < n0; i++ {
		for j := 0; j < n1; j++ {
			base := i*s0 + j*s1

			m := math32.Inf(-1)
			for k := 0; k < nc; k++ {
				if v := data[base+k*sc]; v > m {
					m = v
				}
			}

			var sum float32
			for k := 0; k < nc; k++ {
				e := math32.Exp(data[base+k*sc] - m)
				out[base+k*sc] = e
				sum += e
			}

			inv := 1 / sum
			for k := 0; k < nc; k++ {
				out[base+k*sc] *= inv
			}
		}
	}

	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(out)), nil
}

// SpatialSoftmaxLast applies SpatialSoftmax over the innermost axis, the
// layout score providers emit (H, W, C).
func SpatialSoftmaxLast(t *tensor.Dense) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, &InvalidShapeError{Shape: shape, Axis: -1, Want: "a 3D (H, W, C) tensor"}
	}
	return SpatialSoftmax(t, len(shape)-1)
}
