// Package weights - classifier-head weight surgery: reshaping a fully
// connected classification layer into a 1x1-convolution kernel.
package weights

import (
	"gorgonia.org/tensor"

	"github.com/visionlab-ai/go-localize/heatmap"
)

// ConvHeadParams holds the converted classification head: the fully
// connected weight matrix rearranged as a 1x1-convolution kernel plus
// the unchanged bias vector.
type ConvHeadParams struct {
	// Kernel is the (1, 1, F, C) HWIO convolution kernel.
	Kernel *tensor.Dense
	// Bias is the (C,) per-class bias.
	Bias []float32
	// Classes is C, the size of the label space.
	Classes int
	// Features is F, the width of the feature vector feeding the head.
	Features int
}

// ReshapeToConvKernel rearranges a flat (C, F) fully connected weight
// matrix into a (1, 1, F, C) HWIO kernel for a 1x1 convolution. The
// total element count is unchanged and per-class weight groupings are
// preserved: kernel[0, 0, f, c] == w[c*features+f].
//
// Arguments:
//   - w: The row-major (C, F) weight matrix, length classes*features.
//   - classes: C, the number of classifier outputs.
//   - features: F, the feature vector width.
//
// Returns:
//   - *tensor.Dense: The (1, 1, F, C) kernel.
//   - error: An *heatmap.InvalidShapeError when the element count does
//     not match classes*features.
func ReshapeToConvKernel(w []float32, classes, features int) (*tensor.Dense, error) {
	if classes <= 0 || features <= 0 {
		return nil, &heatmap.InvalidShapeError{
			Shape: []int{classes, features},
			Axis:  -1,
			Want:  "positive class and feature counts",
		}
	}
	if len(w) != classes*features {
		return nil, &heatmap.InvalidShapeError{
			Shape: []int{len(w)},
			Axis:  -1,
			Want:  "a flat (C, F) matrix with classes*features elements",
		}
	}

	kernel := make([]float32, len(w))
	for c := 0; c < classes; c++ {
		for f := 0; f < features; f++ {
			kernel[f*classes+c] = w[c*features+f]
		}
	}
	return tensor.New(tensor.WithShape(1, 1, features, classes), tensor.WithBacking(kernel)), nil
}

// NewConvHeadParams converts a fully connected classification layer into
// 1x1-convolution parameters.
//
// Arguments:
//   - w: The row-major (C, F) weight matrix.
//   - bias: The (C,) bias vector.
//   - classes: C, the number of classifier outputs.
//   - features: F, the feature vector width.
//
// Returns:
//   - *ConvHeadParams: The converted head.
//   - error: An *heatmap.InvalidShapeError on any count mismatch.
func NewConvHeadParams(w, bias []float32, classes, features int) (*ConvHeadParams, error) {
	if len(bias) != classes {
		return nil, &heatmap.InvalidShapeError{
			Shape: []int{len(bias)},
			Axis:  -1,
			Want:  "a (C,) bias vector matching the class count",
		}
	}
	kernel, err := ReshapeToConvKernel(w, classes, features)
	if err != nil {
		return nil, err
	}
	b := make([]float32, classes)
	copy(b, bias)
	return &ConvHeadParams{Kernel: kernel, Bias: b, Classes: classes, Features: features}, nil
}
