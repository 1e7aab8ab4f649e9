// Package heatmap - spatial softmax, class-subset reduction, and
// multi-scale fusion of class-likelihood heatmaps.
package heatmap

// Heatmap is a dense 2D grid of per-location probability mass in [0,1].
// It is a value object: operations return new Heatmaps and never mutate
// their receivers.
type Heatmap struct {
	// Rows is the number of grid rows.
	Rows int
	// Cols is the number of grid columns.
	Cols int
	// Data holds the grid values in row-major order, length Rows*Cols.
	Data []float32
}

// New allocates a zero-valued heatmap of the given shape.
//
// Arguments:
//   - rows: Number of grid rows, must be positive.
//   - cols: Number of grid columns, must be positive.
//
// Returns:
//   - *Heatmap: The allocated heatmap.
//   - error: An *InvalidShapeError if either dimension is not positive.
func New(rows, cols int) (*Heatmap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &InvalidShapeError{Shape: []int{rows, cols}, Axis: -1, Want: "positive rows and cols"}
	}
	return &Heatmap{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}, nil
}

// At returns the value at (row, col). Out-of-range access panics, the
// same as indexing a slice.
func (h *Heatmap) At(row, col int) float32 {
	return h.Data[row*h.Cols+col]
}

// Clone returns a deep copy of the heatmap.
func (h *Heatmap) Clone() *Heatmap {
	out := &Heatmap{Rows: h.Rows, Cols: h.Cols, Data: make([]float32, len(h.Data))}
	copy(out.Data, h.Data)
	return out
}
