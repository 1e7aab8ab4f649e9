package inference

import (
	"image"

	"github.com/nfnt/resize"
	"gorgonia.org/tensor"

	"github.com/visionlab-ai/go-localize/heatmap"
)

// PrepareInput resizes an image to (rows, cols) and packs it into an
// NHWC (1, rows, cols, 3) float32 tensor with values scaled to [0, 1].
//
// Arguments:
//   - img: The source image.
//   - rows: Target height; must be positive and divisible by stride.
//   - cols: Target width; must be positive and divisible by stride.
//   - stride: The network's downsampling stride.
//
// Returns:
//   - *tensor.Dense: The (1, rows, cols, 3) input tensor.
//   - error: An *heatmap.InvalidShapeError when the target shape is not
//     positive or not divisible by the stride.
func PrepareInput(img image.Image, rows, cols, stride int) (*tensor.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &heatmap.InvalidShapeError{Shape: []int{rows, cols}, Axis: -1, Want: "positive input rows and cols"}
	}
	if stride <= 0 {
		return nil, &heatmap.InvalidShapeError{Shape: []int{stride}, Axis: -1, Want: "a positive stride"}
	}
	if rows%stride != 0 || cols%stride != 0 {
		return nil, &heatmap.InvalidShapeError{
			Shape: []int{rows, cols},
			Axis:  -1,
			Want:  "input rows and cols divisible by the network stride",
		}
	}

	// Lanczos3 for input resizing, same policy the detection pipeline
	// uses before ONNX inference.
	resized := resize.Resize(uint(cols), uint(rows), img, resize.Lanczos3)

	data := make([]float32, rows*cols*3)
	i := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[i] = float32(r>>8) / 255.0
			data[i+1] = float32(g>>8) / 255.0
			data[i+2] = float32(b>>8) / 255.0
			i += 3
		}
	}
	return tensor.New(tensor.WithShape(1, rows, cols, 3), tensor.WithBacking(data)), nil
}

// InputShape validates an NHWC input tensor against a stride and returns
// its spatial dimensions.
func InputShape(input *tensor.Dense, stride int) (rows, cols int, err error) {
	shape := input.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[3] != 3 {
		return 0, 0, &heatmap.InvalidShapeError{Shape: shape, Axis: -1, Want: "an NHWC (1, rows, cols, 3) tensor"}
	}
	if shape[1]%stride != 0 || shape[2]%stride != 0 {
		return 0, 0, &heatmap.InvalidShapeError{
			Shape: shape,
			Axis:  -1,
			Want:  "spatial dimensions divisible by the network stride",
		}
	}
	return shape[1], shape[2], nil
}
