package weights

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Dense head weight file layout, all little-endian:
//
//	int32   classes (C)
//	int32   features (F)
//	float32 weights[C*F]  row-major (C, F)
//	float32 bias[C]

// LoadDense reads a fully connected head from a weight file and converts
// it to 1x1-convolution parameters.
//
// Arguments:
//   - path: The weight file path.
//
// Returns:
//   - *ConvHeadParams: The converted head.
//   - error: An error on I/O failure, a malformed header, or a
//     truncated payload.
func LoadDense(path string) (*ConvHeadParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open weight file")
	}
	defer f.Close()
	return ReadDense(f)
}

// ReadDense reads the dense head weight format from r. See LoadDense.
func ReadDense(r io.Reader) (*ConvHeadParams, error) {
	var header struct {
		Classes  int32
		Features int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read weight header")
	}
	if header.Classes <= 0 || header.Features <= 0 {
		return nil, errors.Errorf("invalid weight header: classes=%d features=%d", header.Classes, header.Features)
	}

	classes, features := int(header.Classes), int(header.Features)
	w := make([]float32, classes*features)
	if err := binary.Read(r, binary.LittleEndian, w); err != nil {
		return nil, errors.Wrap(err, "failed to read weight matrix")
	}
	bias := make([]float32, classes)
	if err := binary.Read(r, binary.LittleEndian, bias); err != nil {
		return nil, errors.Wrap(err, "failed to read bias vector")
	}

	return NewConvHeadParams(w, bias, classes, features)
}
