// Package inference - score providers for fully convolutional
// classifiers: preprocessing, the provider contract, and the shipped
// ONNX and converted-head implementations.
package inference

import (
	"context"

	"gorgonia.org/tensor"
)

// ScoreProvider produces a raw class-score tensor for one forward pass
// of a fully convolutional classifier. Implementations must be
// deterministic for a fixed model and weight set; latency and retry
// policy are theirs, not the caller's.
type ScoreProvider interface {
	// Scores runs a forward pass over an NHWC (1, rows, cols, 3) input
	// tensor whose spatial dimensions are divisible by Stride, and
	// returns the (rows/Stride, cols/Stride, Classes) score tensor.
	Scores(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error)

	// Stride is the network's total spatial downsampling factor.
	Stride() int

	// Classes is the size of the label space.
	Classes() int
}
