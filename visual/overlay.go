// Package visual - heatmap rendering over frames.
package visual

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/visionlab-ai/go-localize/heatmap"
)

// grayBytes converts a heatmap to 8-bit grayscale, clamping values to
// [0, 1] before quantizing.
func grayBytes(hm *heatmap.Heatmap) []byte {
	out := make([]byte, len(hm.Data))
	for i, v := range hm.Data {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = byte(v*255 + 0.5)
	}
	return out
}

// Overlay blends a colorized heatmap over a frame. The heatmap is
// resampled to the frame shape, mapped through the Jet colormap, and
// alpha-blended onto the frame.
//
// Arguments:
//   - frame: The BGR frame to draw over.
//   - hm: The heatmap to render.
//   - alpha: Heatmap opacity in (0, 1].
//
// Returns:
//   - gocv.Mat: The blended frame; the caller owns and must Close it.
//   - error: An error for an empty frame or an invalid alpha.
func Overlay(frame gocv.Mat, hm *heatmap.Heatmap, alpha float64) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.NewMat(), errors.New("overlay: frame is empty")
	}
	if alpha <= 0 || alpha > 1 {
		return gocv.NewMat(), errors.Errorf("overlay: alpha %.3f outside (0, 1]", alpha)
	}

	resampled := hm.Resample(frame.Rows(), frame.Cols())
	gray, err := gocv.NewMatFromBytes(resampled.Rows, resampled.Cols, gocv.MatTypeCV8U, grayBytes(resampled))
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "overlay: failed to build grayscale mat")
	}
	defer gray.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, gocv.ColormapJet)

	out := gocv.NewMat()
	gocv.AddWeighted(frame, 1-alpha, colored, alpha, 0, &out)
	return out, nil
}
