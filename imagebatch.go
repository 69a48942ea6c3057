// Package imagebatch converts and resizes images in ordered, concurrent
// batches. It wires the default codecs into an engine.Engine.
package imagebatch

import (
	"context"

	"github.com/Skryldev/imagebatch/adapters/decoder"
	"github.com/Skryldev/imagebatch/adapters/encoder"
	"github.com/Skryldev/imagebatch/adapters/metadata"
	"github.com/Skryldev/imagebatch/adapters/resize"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
	"github.com/Skryldev/imagebatch/engine"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// NewRegistry builds the codec registry selected by cfg.Backend. The
// returned release func frees backend resources and is never nil.
func NewRegistry(cfg config.Config) (*core.DefaultRegistry, func(), error) {
	reg := core.NewRegistry()
	decoder.Register(reg)
	encoder.Register(reg)
	r, err := resize.New(cfg.Resampler)
	if err != nil {
		return nil, nil, err
	}
	reg.SetResizer(r)

	release, err := registerBackend(reg, cfg)
	if err != nil {
		return nil, nil, err
	}
	return reg, release, nil
}

// Processor is the primary entry point.
type Processor struct {
	inner   *engine.Engine
	reg     *core.DefaultRegistry
	release func()
}

// New creates a fully wired Processor. Call Close when done.
func New(cfg config.Config) (*Processor, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	reg, release, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	inner, err := engine.New(cfg, reg)
	if err != nil {
		release()
		return nil, err
	}
	return &Processor{inner: inner, reg: reg, release: release}, nil
}

// Inner exposes the engine for callers that need storage or transcoder
// access.
func (p *Processor) Inner() *engine.Engine { return p.inner }

// Close releases backend resources.
func (p *Processor) Close() { p.release() }

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) { p.inner.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m core.MetricsCollector) { p.inner.SetMetrics(m) }

// AddHook registers an observer for pipeline step events.
func (p *Processor) AddHook(h core.Hook) { p.inner.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given format.
func (p *Processor) RegisterDecoder(f core.Format, d core.Decoder) { p.reg.RegisterDecoder(f, d) }

// RegisterEncoder registers a custom encoder for the given format.
func (p *Processor) RegisterEncoder(f core.Format, e core.Encoder) { p.reg.RegisterEncoder(f, e) }

// RunBatch converts inputs into outputFolder. See engine.Engine.RunBatch.
func (p *Processor) RunBatch(ctx context.Context, inputs []string, outputFolder string, params core.Parameters, onProgress func(core.BatchProgress)) core.BatchResult {
	return p.inner.RunBatch(ctx, inputs, outputFolder, params, onProgress)
}

// Preview encodes one file without writing it, memoised by parameters.
func (p *Processor) Preview(ctx context.Context, path string, params core.Parameters) (engine.PreviewResult, error) {
	return p.inner.Preview(ctx, path, params)
}

// Inspect reports source image properties.
func (p *Processor) Inspect(ctx context.Context, path string) (metadata.Info, error) {
	return p.inner.Inspect(ctx, path)
}

// Formats reports encoder availability per output format.
func (p *Processor) Formats() []engine.FormatInfo { return p.inner.Formats() }

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (processed, errors int64) { return p.inner.Stats() }
