package localize

import (
	"image"

	"github.com/pkg/errors"

	"github.com/visionlab-ai/go-localize/inference"
)

// Builder assembles a Localizer with a fluent API.
type Builder struct {
	provider inference.ScoreProvider
	config   Config
	err      error
}

// NewBuilder creates a new localizer builder.
//
// Returns:
//   - *Builder: The builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithProvider sets the score provider.
//
// Arguments:
//   - provider: The score provider to run forward passes with.
//
// Returns:
//   - *Builder: The builder.
func (b *Builder) WithProvider(provider inference.ScoreProvider) *Builder {
	if b.HasError() {
		return b
	}
	if provider == nil {
		b.err = errors.New("provider must not be nil")
		return b
	}
	b.provider = provider
	return b
}

// WithScales sets the input resolutions to evaluate, X=cols and Y=rows.
//
// Arguments:
//   - scales: One or more input resolutions.
//
// Returns:
//   - *Builder: The builder.
func (b *Builder) WithScales(scales ...image.Point) *Builder {
	if b.HasError() {
		return b
	}
	for _, s := range scales {
		if s.X <= 0 || s.Y <= 0 {
			b.err = errors.Errorf("invalid scale %dx%d", s.X, s.Y)
			return b
		}
	}
	b.config.Scales = append(b.config.Scales, scales...)
	return b
}

// WithTargetShape fixes the fused heatmap shape.
//
// Arguments:
//   - rows: Target row count.
//   - cols: Target column count.
//
// Returns:
//   - *Builder: The builder.
func (b *Builder) WithTargetShape(rows, cols int) *Builder {
	if b.HasError() {
		return b
	}
	if rows <= 0 || cols <= 0 {
		b.err = errors.Errorf("invalid target shape %dx%d", rows, cols)
		return b
	}
	b.config.TargetRows = rows
	b.config.TargetCols = cols
	return b
}

// WithMaxConcurrency caps the number of scales evaluated in parallel.
//
// Arguments:
//   - n: The cap; zero or negative means one goroutine per scale.
//
// Returns:
//   - *Builder: The builder.
func (b *Builder) WithMaxConcurrency(n int) *Builder {
	if b.HasError() {
		return b
	}
	b.config.MaxConcurrency = n
	return b
}

// HasError checks if the builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *Builder) HasError() bool {
	return b.err != nil
}

// Build builds the localizer.
//
// Returns:
//   - *Localizer: The localizer.
//   - error: The error if any.
func (b *Builder) Build() (*Localizer, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.provider == nil {
		return nil, errors.New("provider not configured")
	}
	if len(b.config.Scales) == 0 {
		return nil, errors.New("at least one scale is required")
	}
	for _, s := range b.config.Scales {
		if s.X%b.provider.Stride() != 0 || s.Y%b.provider.Stride() != 0 {
			return nil, errors.Errorf("scale %dx%d is not divisible by the provider stride %d",
				s.X, s.Y, b.provider.Stride())
		}
	}
	return &Localizer{provider: b.provider, config: b.config}, nil
}

// MustBuild builds the localizer and panics if there is an error.
//
// Returns:
//   - *Localizer: The localizer.
func (b *Builder) MustBuild() *Localizer {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
