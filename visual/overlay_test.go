package visual

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visionlab-ai/go-localize/heatmap"
)

// TestGrayBytes verifies the clamp-and-quantize step feeding the
// colormap.
func TestGrayBytes(t *testing.T) {
	hm := &heatmap.Heatmap{Rows: 1, Cols: 5, Data: []float32{-0.5, 0, 0.5, 1, 2}}

	got := grayBytes(hm)
	assert.Equal(t, []byte{0, 0, 128, 255, 255}, got)
}
