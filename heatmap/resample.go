package heatmap

// Resampling for float32 probability grids.
//
// Heatmap values are probability magnitudes, so resampling must preserve
// the value range exactly: every output value is a convex combination of
// input values (non-negative weights summing to 1). Image-library
// resizers round-trip through 8- or 16-bit channels and would quantize
// the probabilities, so the separable triangle filter is applied to the
// float grid directly. When downsampling, the filter support is widened
// by the scale factor so the pass is anti-aliased.

// contribution lists the source samples and normalized weights feeding
// one output sample along a single axis.
type contribution struct {
	start   int
	weights []float32
}

// contributions builds the per-output-sample filter taps for resampling
// a line of srcN samples to dstN samples with a triangle filter.
func contributions(srcN, dstN int) []contribution {
	scale := float64(srcN) / float64(dstN)
	// Widen the kernel when minifying so high frequencies are averaged
	// out instead of aliased.
	support := 1.0
	if scale > 1 {
		support = scale
	}

	out := make([]contribution, dstN)
	for x := 0; x < dstN; x++ {
		center := (float64(x)+0.5)*scale - 0.5
		lo := int(center - support)
		hi := int(center + support + 1)
		if lo < 0 {
			lo = 0
		}
		if hi > srcN-1 {
			hi = srcN - 1
		}

		weights := make([]float32, hi-lo+1)
		var sum float32
		for i := lo; i <= hi; i++ {
			d := (center - float64(i)) / support
			if d < 0 {
				d = -d
			}
			if d >= 1 {
				continue
			}
			w := float32(1 - d)
			weights[i-lo] = w
			sum += w
		}
		// Normalize so each output is a convex combination of inputs.
		if sum > 0 {
			inv := 1 / sum
			for i := range weights {
				weights[i] *= inv
			}
		} else {
			// Degenerate tap window, fall back to the nearest sample.
			nearest := int(center + 0.5)
			if nearest < lo {
				nearest = lo
			}
			if nearest > hi {
				nearest = hi
			}
			weights[nearest-lo] = 1
		}
		out[x] = contribution{start: lo, weights: weights}
	}
	return out
}

// Resample returns the heatmap resampled to (rows, cols) with an
// anti-aliased separable triangle filter. Values are never renormalized:
// a constant grid stays constant and the output range is bounded by the
// input range. Resampling to the same shape returns a copy.
func (h *Heatmap) Resample(rows, cols int) *Heatmap {
	if rows == h.Rows && cols == h.Cols {
		return h.Clone()
	}

	// Horizontal pass: h.Rows x h.Cols -> h.Rows x cols.
	horiz := h.Data
	if cols != h.Cols {
		taps := contributions(h.Cols, cols)
		horiz = make([]float32, h.Rows*cols)
		for r := 0; r < h.Rows; r++ {
			src := h.Data[r*h.Cols : (r+1)*h.Cols]
			dst := horiz[r*cols : (r+1)*cols]
			for x, tap := range taps {
				var v float32
				for i, w := range tap.weights {
					v += w * src[tap.start+i]
				}
				dst[x] = v
			}
		}
	}

	// Vertical pass: h.Rows x cols -> rows x cols.
	if rows == h.Rows {
		return &Heatmap{Rows: rows, Cols: cols, Data: horiz}
	}
	taps := contributions(h.Rows, rows)
	out := make([]float32, rows*cols)
	for y, tap := range taps {
		dst := out[y*cols : (y+1)*cols]
		for i, w := range tap.weights {
			src := horiz[(tap.start+i)*cols : (tap.start+i+1)*cols]
			for c := range dst {
				dst[c] += w * src[c]
			}
		}
	}
	return &Heatmap{Rows: rows, Cols: cols, Data: out}
}
