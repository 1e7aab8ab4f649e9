// Package localize - the multi-scale localization pipeline: one forward
// pass per input resolution, spatial softmax and class-subset reduction
// per scale, and geometric-mean fusion of the resulting heatmaps.
package localize

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"

	"github.com/visionlab-ai/go-localize/heatmap"
	"github.com/visionlab-ai/go-localize/inference"
)

// Config holds the pipeline settings.
type Config struct {
	// Scales lists the input resolutions to evaluate, X=cols and Y=rows.
	// Each must be divisible by the provider's stride.
	Scales []image.Point
	// TargetRows and TargetCols fix the fused heatmap shape. When zero,
	// the largest per-scale score grid is used.
	TargetRows int
	TargetCols int
	// MaxConcurrency caps the number of scales evaluated in parallel.
	// Zero or negative means one goroutine per scale.
	MaxConcurrency int
}

// Localizer turns an image and a class subset into a fused heatmap.
// Scales are independent, so each runs on its own goroutine; results
// join at the fusion step, which needs every scale before it can
// produce output.
type Localizer struct {
	provider inference.ScoreProvider
	config   Config
}

// Heatmap produces the fused localization heatmap for one image and one
// class subset.
//
// Arguments:
//   - ctx: Context checked before each scale's forward pass.
//   - img: The source image.
//   - subset: Class indices to aggregate; unmapped placeholder entries
//     are tolerated.
//
// Returns:
//   - *heatmap.Heatmap: The fused heatmap on the target grid.
//   - error: The first per-scale failure, wrapped with the scale that
//     produced it; provider failures are never masked or retried.
func (l *Localizer) Heatmap(ctx context.Context, img image.Image, subset []int) (*heatmap.Heatmap, error) {
	maps := make([]*heatmap.Heatmap, len(l.config.Scales))
	errs := make([]error, len(l.config.Scales))

	limit := l.config.MaxConcurrency
	if limit <= 0 {
		limit = len(l.config.Scales)
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, scale := range l.config.Scales {
		wg.Add(1)
		go func(idx int, scale image.Point) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			hm, err := l.scaleHeatmap(ctx, img, scale, subset)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "scale %dx%d", scale.X, scale.Y)
				return
			}
			maps[idx] = hm
		}(i, scale)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	rows, cols := l.targetShape(maps)
	return heatmap.FuseScales(maps, rows, cols)
}

// scaleHeatmap evaluates one input resolution: preprocess, forward pass,
// spatial softmax, class-subset reduction.
func (l *Localizer) scaleHeatmap(ctx context.Context, img image.Image, scale image.Point, subset []int) (*heatmap.Heatmap, error) {
	input, err := inference.PrepareInput(img, scale.Y, scale.X, l.provider.Stride())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores, err := l.provider.Scores(ctx, input)
	if err != nil {
		return nil, err
	}
	probs, err := heatmap.SpatialSoftmaxLast(scores)
	if err != nil {
		return nil, err
	}
	return heatmap.ReduceClassSubset(probs, subset)
}

// targetShape resolves the fusion grid: the configured shape when set,
// otherwise the largest per-scale grid.
func (l *Localizer) targetShape(maps []*heatmap.Heatmap) (int, int) {
	if l.config.TargetRows > 0 && l.config.TargetCols > 0 {
		return l.config.TargetRows, l.config.TargetCols
	}
	rows, cols := 0, 0
	for _, h := range maps {
		if h.Rows > rows {
			rows = h.Rows
		}
		if h.Cols > cols {
			cols = h.Cols
		}
	}
	return rows, cols
}
