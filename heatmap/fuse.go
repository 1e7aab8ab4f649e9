package heatmap

import "github.com/chewxy/math32"

// FuseScales combines heatmaps of one scene computed at different input
// resolutions into a single heatmap on the (rows, cols) grid.
//
// Each input is first resampled to the target shape with the
// anti-aliased triangle filter; raw probability magnitudes are preserved
// under resampling, never renormalized. The fused value at each location
// is the geometric mean across scales. Geometric mean acts like a
// logical AND across scales: a location only survives if every scale
// assigns it mass, and an exact zero at any scale propagates to the
// output. The zero propagation is intended lossy behavior and is not
// clamped away.
//
// Arguments:
//   - maps: One heatmap per input resolution, shapes may differ.
//   - rows: Target row count.
//   - cols: Target column count.
//
// Returns:
//   - *Heatmap: The fused (rows, cols) heatmap. A single input
//     degenerates to the identity, with resampling still applied.
//   - error: A *ShapeMismatchError when maps is empty, or an
//     *InvalidShapeError for a non-positive target shape.
func FuseScales(maps []*Heatmap, rows, cols int) (*Heatmap, error) {
	n := len(maps)
	if n == 0 {
		return nil, &ShapeMismatchError{Count: 0}
	}
	if rows <= 0 || cols <= 0 {
		return nil, &InvalidShapeError{Shape: []int{rows, cols}, Axis: -1, Want: "positive target rows and cols"}
	}

	out := maps[0].Resample(rows, cols)
	if n == 1 {
		return out, nil
	}

	for _, h := range maps[1:] {
		r := h.Resample(rows, cols)
		for i := range out.Data {
			out.Data[i] *= r.Data[i]
		}
	}

	exp := 1 / float32(n)
	for i := range out.Data {
		out.Data[i] = math32.Pow(out.Data[i], exp)
	}
	return out, nil
}
