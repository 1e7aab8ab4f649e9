// Package util - image file loading.
package util

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// LoadImage reads and decodes a single image file. JPEG, PNG, and WebP
// are decoded by extension; anything else falls through to the registered
// stdlib decoders.
//
// Arguments:
//   - path: Path to the image file.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if reading or decoding fails.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		img, err := jpeg.Decode(bytes.NewReader(data))
		return img, errors.Wrapf(err, "failed to decode JPEG %s", path)
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		return img, errors.Wrapf(err, "failed to decode PNG %s", path)
	case ".webp":
		img, err := webp.Decode(bytes.NewReader(data))
		return img, errors.Wrapf(err, "failed to decode WebP %s", path)
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, errors.Wrapf(err, "failed to decode image %s", path)
	}
}

// LoadDirectoryImages reads every supported image file in a directory,
// sorted by file name.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []string: The image file paths in name order.
//   - error: An error if the directory cannot be read.
func LoadDirectoryImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var paths []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(file.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp":
			paths = append(paths, filepath.Join(dir, file.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
