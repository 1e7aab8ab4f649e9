package heatmap

import "fmt"

// InvalidShapeError reports a malformed tensor shape or axis argument.
type InvalidShapeError struct {
	// Shape is the offending tensor shape.
	Shape []int
	// Axis is the axis argument that was rejected, or -1 when the shape
	// itself is the problem.
	Axis int
	// Want describes what the caller should have supplied.
	Want string
}

func (e *InvalidShapeError) Error() string {
	if e.Axis >= 0 {
		return fmt.Sprintf("invalid shape %v with axis %d: want %s", e.Shape, e.Axis, e.Want)
	}
	return fmt.Sprintf("invalid shape %v: want %s", e.Shape, e.Want)
}

// EmptySubsetError reports a class-subset reduction where no valid class
// indices remain after filtering.
type EmptySubsetError struct {
	// Classes is the size of the class axis.
	Classes int
	// Given is the number of indices supplied before filtering.
	Given int
}

func (e *EmptySubsetError) Error() string {
	return fmt.Sprintf("class subset is empty after filtering: none of the %d supplied indices are valid for %d classes",
		e.Given, e.Classes)
}

// ShapeMismatchError reports a fusion call with no input heatmaps.
type ShapeMismatchError struct {
	// Count is the number of heatmaps supplied.
	Count int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("cannot fuse %d heatmaps: at least one is required", e.Count)
}
