package inference

import (
	"context"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/visionlab-ai/go-localize/heatmap"
	"github.com/visionlab-ai/go-localize/weights"
)

// FeatureExtractor computes the convolutional feature maps feeding the
// classification head: given an NHWC (1, rows, cols, 3) input it returns
// a (rows/stride, cols/stride, F) tensor.
type FeatureExtractor func(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error)

// ConvHead is a ScoreProvider that applies a converted classification
// head on top of an arbitrary feature extractor. A 1x1 convolution over
// (h, w, F) feature maps is exactly a matrix product of the flattened
// (h*w, F) features with the (F, C) kernel, so the head is evaluated as
// one matmul plus a broadcast bias on a gorgonia graph.
type ConvHead struct {
	params  *weights.ConvHeadParams
	extract FeatureExtractor
	stride  int
}

// NewConvHead builds a converted-head provider.
//
// Arguments:
//   - params: The converted head parameters.
//   - extract: The feature extractor the head sits on.
//   - stride: The extractor's total downsampling stride.
//
// Returns:
//   - *ConvHead: The provider.
//   - error: An error when any argument is missing or invalid.
func NewConvHead(params *weights.ConvHeadParams, extract FeatureExtractor, stride int) (*ConvHead, error) {
	if params == nil {
		return nil, errors.New("conv head: params not configured")
	}
	if extract == nil {
		return nil, errors.New("conv head: feature extractor not configured")
	}
	if stride <= 0 {
		return nil, errors.Errorf("conv head: invalid stride %d", stride)
	}
	return &ConvHead{params: params, extract: extract, stride: stride}, nil
}

// Stride returns the extractor's downsampling stride.
func (c *ConvHead) Stride() int { return c.stride }

// Classes returns the size of the label space.
func (c *ConvHead) Classes() int { return c.params.Classes }

// Scores runs the feature extractor and applies the 1x1-convolution head
// at every spatial location.
//
// Arguments:
//   - ctx: Context checked before each stage.
//   - input: An NHWC (1, rows, cols, 3) tensor.
//
// Returns:
//   - *tensor.Dense: The (rows/stride, cols/stride, C) score tensor.
//   - error: Extractor failures propagate unmodified apart from added
//     context; shape violations surface as *heatmap.InvalidShapeError.
func (c *ConvHead) Scores(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	if _, _, err := InputShape(input, c.stride); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	feats, err := c.extract(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "feature extraction failed")
	}
	shape := feats.Shape()
	if len(shape) != 3 || shape[2] != c.params.Features {
		return nil, &heatmap.InvalidShapeError{
			Shape: shape,
			Axis:  -1,
			Want:  "(h, w, F) feature maps matching the head's feature width",
		}
	}
	h, w := shape[0], shape[1]

	featData, ok := feats.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("conv head: expected float32 features, got %T", feats.Data())
	}
	kernelData, ok := c.params.Kernel.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("conv head: expected float32 kernel, got %T", c.params.Kernel.Data())
	}

	scores, err := c.run(featData, kernelData, h*w)
	if err != nil {
		return nil, err
	}
	return tensor.New(tensor.WithShape(h, w, c.params.Classes), tensor.WithBacking(scores)), nil
}

// run evaluates scores = features x kernel + bias on a gorgonia graph,
// with features flattened to (locations, F).
func (c *ConvHead) run(featData, kernelData []float32, locations int) ([]float32, error) {
	f, classes := c.params.Features, c.params.Classes

	g := gorgonia.NewGraph()
	x := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(locations, f), gorgonia.WithName("features"))
	k := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(f, classes), gorgonia.WithName("kernel"))
	b := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(1, classes), gorgonia.WithName("bias"))

	mm, err := gorgonia.Mul(x, k)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build head matmul")
	}
	out, err := gorgonia.BroadcastAdd(mm, b, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build bias broadcast")
	}

	xv := tensor.New(tensor.WithShape(locations, f), tensor.WithBacking(featData))
	// The (1,1,F,C) kernel is row-major over (F, C), so its backing is
	// already the matmul operand.
	kv := tensor.New(tensor.WithShape(f, classes), tensor.WithBacking(kernelData))
	bv := tensor.New(tensor.WithShape(1, classes), tensor.WithBacking(c.params.Bias))
	if err := gorgonia.Let(x, xv); err != nil {
		return nil, errors.Wrap(err, "failed to bind features")
	}
	if err := gorgonia.Let(k, kv); err != nil {
		return nil, errors.Wrap(err, "failed to bind kernel")
	}
	if err := gorgonia.Let(b, bv); err != nil {
		return nil, errors.Wrap(err, "failed to bind bias")
	}

	machine := gorgonia.NewTapeMachine(g)
	defer machine.Close()
	if err := machine.RunAll(); err != nil {
		return nil, errors.Wrap(err, "head evaluation failed")
	}

	data, ok := out.Value().Data().([]float32)
	if !ok {
		return nil, errors.Errorf("conv head: expected float32 scores, got %T", out.Value().Data())
	}
	scores := make([]float32, len(data))
	copy(scores, data)
	return scores, nil
}
