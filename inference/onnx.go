package inference

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

var runtimeInit sync.Once

// EnsureRuntime initializes the ONNX runtime environment once per
// process. libraryPath may be empty when the shared library is on the
// default search path.
func EnsureRuntime(libraryPath string) error {
	var err error
	runtimeInit.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

// ONNXConfig configures an ONNX-backed score provider.
type ONNXConfig struct {
	// ModelPath is the path to the fully convolutional ONNX model.
	ModelPath string
	// InputName is the model's input tensor name.
	InputName string
	// OutputName is the model's output tensor name.
	OutputName string
	// Stride is the network's total downsampling stride.
	Stride int
	// Classes is the size of the label space.
	Classes int
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
}

// onnxSession holds the per-resolution session and its reusable tensors.
// A fully convolutional model accepts any stride-aligned input size, but
// an onnxruntime session binds fixed tensor shapes, so one session is
// kept per resolution.
type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *onnxSession) destroy() {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}

// ONNXProvider is a ScoreProvider backed by onnxruntime. Sessions are
// created lazily per input resolution and reused across calls; Scores is
// safe for concurrent use.
type ONNXProvider struct {
	cfg      ONNXConfig
	mu       sync.Mutex
	sessions map[string]*onnxSession
}

// NewONNXProvider validates the configuration, initializes the runtime,
// and returns a provider. No session is created until the first Scores
// call, since session shapes depend on the requested resolution.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ONNXProvider: The provider.
//   - error: An error on a missing model file or invalid configuration.
func NewONNXProvider(cfg ONNXConfig) (*ONNXProvider, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("onnx provider: model path not configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "onnx provider: model file %s", cfg.ModelPath)
	}
	if cfg.Stride <= 0 {
		return nil, errors.Errorf("onnx provider: invalid stride %d", cfg.Stride)
	}
	if cfg.Classes <= 0 {
		return nil, errors.Errorf("onnx provider: invalid class count %d", cfg.Classes)
	}
	if cfg.InputName == "" || cfg.OutputName == "" {
		return nil, errors.New("onnx provider: input and output tensor names are required")
	}
	if err := EnsureRuntime(cfg.LibraryPath); err != nil {
		return nil, errors.Wrap(err, "onnx provider: runtime initialization failed")
	}
	return &ONNXProvider{cfg: cfg, sessions: make(map[string]*onnxSession)}, nil
}

// Stride returns the network's downsampling stride.
func (p *ONNXProvider) Stride() int { return p.cfg.Stride }

// Classes returns the size of the label space.
func (p *ONNXProvider) Classes() int { return p.cfg.Classes }

// Scores runs one forward pass and returns the raw score tensor.
//
// Arguments:
//   - ctx: Context checked before the (synchronous) runtime call.
//   - input: An NHWC (1, rows, cols, 3) tensor, stride-aligned.
//
// Returns:
//   - *tensor.Dense: The (rows/stride, cols/stride, classes) scores.
//   - error: Shape violations as *heatmap.InvalidShapeError; runtime
//     failures propagate with added context only.
func (p *ONNXProvider) Scores(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	rows, cols, err := InputShape(input, p.cfg.Stride)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := input.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("onnx provider: expected float32 input, got %T", input.Data())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sess, err := p.session(rows, cols)
	if err != nil {
		return nil, err
	}

	copy(sess.input.GetData(), data)
	if err := sess.session.Run(); err != nil {
		return nil, errors.Wrap(err, "onnx inference failed")
	}

	h, w := rows/p.cfg.Stride, cols/p.cfg.Stride
	out := make([]float32, h*w*p.cfg.Classes)
	copy(out, sess.output.GetData())
	return tensor.New(tensor.WithShape(h, w, p.cfg.Classes), tensor.WithBacking(out)), nil
}

// session returns the cached session for a resolution, creating it on
// first use. Callers hold p.mu.
func (p *ONNXProvider) session(rows, cols int) (*onnxSession, error) {
	key := fmt.Sprintf("%dx%d", rows, cols)
	if sess, ok := p.sessions[key]; ok {
		return sess, nil
	}

	h, w := rows/p.cfg.Stride, cols/p.cfg.Stride
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(rows), int64(cols), 3))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(h), int64(w), int64(p.cfg.Classes)))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "failed to create output tensor")
	}

	session, err := ort.NewAdvancedSession(
		p.cfg.ModelPath,
		[]string{p.cfg.InputName},
		[]string{p.cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "failed to create ONNX session for %s input", key)
	}

	sess := &onnxSession{session: session, input: inputTensor, output: outputTensor}
	p.sessions[key] = sess
	return sess, nil
}

// Close releases every cached session and its tensors.
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, sess := range p.sessions {
		sess.destroy()
		delete(p.sessions, key)
	}
	return nil
}
