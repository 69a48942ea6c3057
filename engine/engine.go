// Package engine runs transcodes: single files, ordered concurrent batches
// and cached previews.
package engine

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/Skryldev/imagebatch/adapters/metadata"
	"github.com/Skryldev/imagebatch/adapters/storage"
	"github.com/Skryldev/imagebatch/cache"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/hooks"
)

// Engine is the central orchestrator. It is safe for concurrent use once
// configured; call the setters before the first batch or preview.
type Engine struct {
	cfg        config.Config
	registry   core.Registry
	transcoder *Transcoder
	store      *storage.Local
	previews   *cache.PreviewCache
	logger     core.Logger
	metrics    core.MetricsCollector

	// Atomic counters for lightweight internal metrics.
	processedCount int64
	errorCount     int64
}

// New creates an Engine over reg. cfg is validated first.
func New(cfg config.Config, reg core.Registry) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	previews, err := cache.NewPreviewCache(cfg.PreviewCacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		registry:   reg,
		transcoder: NewTranscoder(reg),
		store:      storage.NewLocal(os.FileMode(cfg.FilePermissions)),
		previews:   previews,
		logger:     hooks.NopLogger{},
		metrics:    hooks.NopMetrics{},
	}, nil
}

// SetLogger attaches a structured logger.
func (e *Engine) SetLogger(l core.Logger) { e.logger = l }

// SetMetrics attaches a metrics collector.
func (e *Engine) SetMetrics(m core.MetricsCollector) { e.metrics = m }

// AddHook registers a pipeline hook.
func (e *Engine) AddHook(h core.Hook) { e.transcoder.AddHook(h) }

// Registry returns the codec registry.
func (e *Engine) Registry() core.Registry { return e.registry }

// Storage returns the output writer, for tuning such as SetStatfs.
func (e *Engine) Storage() *storage.Local { return e.store }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Transcoder returns the single-file transcoder.
func (e *Engine) Transcoder() *Transcoder { return e.transcoder }

// Inspect reports source image properties without transcoding.
func (e *Engine) Inspect(_ context.Context, path string) (metadata.Info, error) {
	return metadata.Inspect(path)
}

// FormatInfo describes the engine's ability to write one format.
type FormatInfo struct {
	Format    core.Format
	Available bool
	// Fallback is the substitute format used when Available is false, or ""
	// when the format has none.
	Fallback core.Format
}

// Formats reports encoder availability for every output format.
func (e *Engine) Formats() []FormatInfo {
	out := make([]FormatInfo, 0, 3)
	for _, f := range core.Formats() {
		info := FormatInfo{Format: f, Available: core.EncoderAvailable(e.registry, f)}
		unavailable := apperrors.New(apperrors.KindUnsupportedOutputFormat, "engine.formats", apperrors.ErrNoEncoder)
		if sub, ok := core.DecideFallback(f, unavailable); ok {
			info.Fallback = sub
		}
		out = append(out, info)
	}
	return out
}

// Stats returns how many files were written and how many failed since the
// engine was created.
func (e *Engine) Stats() (processed, errors int64) {
	return atomic.LoadInt64(&e.processedCount), atomic.LoadInt64(&e.errorCount)
}
