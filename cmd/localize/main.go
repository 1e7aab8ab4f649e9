// Command localize produces a weak-localization heatmap for a synset by
// running a fully convolutional classifier at several input resolutions
// and fusing the per-scale heatmaps.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/visionlab-ai/go-localize/inference"
	"github.com/visionlab-ai/go-localize/localize"
	"github.com/visionlab-ai/go-localize/ontology"
	"github.com/visionlab-ai/go-localize/util"
	"github.com/visionlab-ai/go-localize/visual"
)

const (
	// DefaultScales covers one octave below and above the network's
	// native training resolution.
	DefaultScales = "224x224,448x448,896x896"
	// DefaultAlpha is the overlay opacity.
	DefaultAlpha = 0.45
)

func main() {
	var (
		modelPath    string
		libraryPath  string
		inputName    string
		outputName   string
		classes      int
		stride       int
		imagePath    string
		taxonomyPath string
		synsetID     string
		scalesArg    string
		targetArg    string
		alpha        float64
		outputPath   string
		concurrency  int
	)
	flag.StringVar(&modelPath, "model", "", "Path to the fully convolutional ONNX model")
	flag.StringVar(&libraryPath, "onnx-lib", "", "Path to the onnxruntime shared library (optional)")
	flag.StringVar(&inputName, "input-name", "input", "Model input tensor name")
	flag.StringVar(&outputName, "output-name", "scores", "Model output tensor name")
	flag.IntVar(&classes, "classes", 1000, "Size of the model's label space")
	flag.IntVar(&stride, "stride", 32, "Network downsampling stride")
	flag.StringVar(&imagePath, "image", "", "Path to the input image (.jpg, .png, .webp)")
	flag.StringVar(&taxonomyPath, "taxonomy", "", "Path to the synset taxonomy file")
	flag.StringVar(&synsetID, "synset", "", "Synset to localize, e.g. n02084071")
	flag.StringVar(&scalesArg, "scales", DefaultScales, "Comma-separated input resolutions, COLSxROWS")
	flag.StringVar(&targetArg, "target", "", "Fused heatmap shape, COLSxROWS (default: largest score grid)")
	flag.Float64Var(&alpha, "alpha", DefaultAlpha, "Overlay opacity in (0, 1]")
	flag.StringVar(&outputPath, "out", "heatmap_overlay.png", "Path to write the overlay image")
	flag.IntVar(&concurrency, "concurrency", 0, "Max scales evaluated in parallel (0 = all)")
	flag.Parse()

	if modelPath == "" || imagePath == "" || taxonomyPath == "" || synsetID == "" {
		log.Fatal("flags -model, -image, -taxonomy, and -synset are required")
	}

	scales, err := parseScales(scalesArg)
	if err != nil {
		log.Fatalf("invalid -scales: %v", err)
	}

	taxonomy, err := ontology.Load(taxonomyPath)
	if err != nil {
		log.Fatalf("failed to load taxonomy: %v", err)
	}
	subset, err := taxonomy.Subtree(synsetID)
	if err != nil {
		log.Fatalf("failed to resolve synset: %v", err)
	}

	provider, err := inference.NewONNXProvider(inference.ONNXConfig{
		ModelPath:   modelPath,
		InputName:   inputName,
		OutputName:  outputName,
		Stride:      stride,
		Classes:     classes,
		LibraryPath: libraryPath,
	})
	if err != nil {
		log.Fatalf("failed to create score provider: %v", err)
	}
	defer provider.Close()

	builder := localize.NewBuilder().
		WithProvider(provider).
		WithScales(scales...).
		WithMaxConcurrency(concurrency)
	if targetArg != "" {
		target, err := parseShape(targetArg)
		if err != nil {
			log.Fatalf("invalid -target: %v", err)
		}
		builder = builder.WithTargetShape(target.Y, target.X)
	}
	localizer, err := builder.Build()
	if err != nil {
		log.Fatalf("failed to build localizer: %v", err)
	}

	img, err := util.LoadImage(imagePath)
	if err != nil {
		log.Fatalf("failed to load image: %v", err)
	}

	fmt.Printf("Localizing %s in %s across %d scales\n", synsetID, imagePath, len(scales))
	start := time.Now()
	hm, err := localizer.Heatmap(context.Background(), img, subset)
	if err != nil {
		log.Fatalf("localization failed: %v", err)
	}
	fmt.Printf("Fused %dx%d heatmap in %v\n", hm.Rows, hm.Cols, time.Since(start))

	frame := gocv.IMRead(imagePath, gocv.IMReadColor)
	if frame.Empty() {
		log.Fatalf("failed to read frame for overlay: %s", imagePath)
	}
	defer frame.Close()

	overlay, err := visual.Overlay(frame, hm, alpha)
	if err != nil {
		log.Fatalf("failed to render overlay: %v", err)
	}
	defer overlay.Close()

	if !gocv.IMWrite(outputPath, overlay) {
		log.Fatalf("failed to write overlay to %s", outputPath)
	}
	fmt.Printf("Overlay saved to %s\n", outputPath)
}

// parseScales parses a comma-separated list of COLSxROWS resolutions.
func parseScales(arg string) ([]image.Point, error) {
	var scales []image.Point
	for _, part := range strings.Split(arg, ",") {
		p, err := parseShape(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		scales = append(scales, p)
	}
	return scales, nil
}

// parseShape parses a single COLSxROWS pair.
func parseShape(arg string) (image.Point, error) {
	parts := strings.Split(arg, "x")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("%q is not COLSxROWS", arg)
	}
	cols, err := strconv.Atoi(parts[0])
	if err != nil {
		return image.Point{}, fmt.Errorf("bad column count in %q: %w", arg, err)
	}
	rows, err := strconv.Atoi(parts[1])
	if err != nil {
		return image.Point{}, fmt.Errorf("bad row count in %q: %w", arg, err)
	}
	return image.Point{X: cols, Y: rows}, nil
}
