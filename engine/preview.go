package engine

import (
	"context"
	"path/filepath"

	"github.com/Skryldev/imagebatch/cache"
	"github.com/Skryldev/imagebatch/core"
)

// PreviewResult is an encoded preview of one file.
type PreviewResult struct {
	Data   []byte
	Width  int
	Height int

	// Format is the format actually encoded; RequestedFormat is what the
	// caller asked for. They differ when WebP is unavailable.
	Format          core.Format
	RequestedFormat core.Format

	// EstimatedSize is the on-disk size of a fresh encode, or 0 when the
	// preview came from the cache.
	EstimatedSize int64
	Cached        bool
}

// Preview encodes path with params without writing an output file. Results
// are cached by the full (path, parameters) tuple, so repeating a request
// skips the encode. A file changed on disk under the same path keeps
// returning the cached preview until PurgePreviews is called.
func (e *Engine) Preview(ctx context.Context, path string, params core.Parameters) (PreviewResult, error) {
	if err := params.Validate(); err != nil {
		return PreviewResult{}, err
	}

	key := cache.KeyFor(path, params)
	entry, hit, err := e.previews.GetOrCompute(ctx, key, func(ctx context.Context) (cache.PreviewEntry, error) {
		return e.computePreview(ctx, path, params)
	})
	if err != nil {
		e.logger.Warn("preview.failed", "file", filepath.Base(path), "error", err)
		return PreviewResult{}, err
	}
	e.metrics.RecordCache(hit)
	if hit {
		e.logger.Debug("preview.cache.hit", "key", key.String())
	}

	res := PreviewResult{
		Data:            entry.Data,
		Width:           entry.Width,
		Height:          entry.Height,
		Format:          entry.Format,
		RequestedFormat: params.Format,
		Cached:          hit,
	}
	if !hit {
		res.EstimatedSize = entry.EncodedSize
	}
	return res, nil
}

func (e *Engine) computePreview(ctx context.Context, path string, params core.Parameters) (cache.PreviewEntry, error) {
	target := params
	if params.Format == core.FormatWebP && !core.EncoderAvailable(e.registry, core.FormatWebP) {
		target = params.WithFormat(core.FormatJPEG)
		e.logger.Warn("preview.fallback", "file", filepath.Base(path), "from", params.Format, "to", target.Format)
		e.metrics.RecordFallback(params.Format, target.Format)
	}

	out, err := e.transcoder.Transcode(ctx, path, target)
	if err != nil {
		return cache.PreviewEntry{}, err
	}

	size, err := e.store.Measure(ctx, e.cfg.ScratchDir, out.Data)
	if err != nil {
		e.logger.Debug("preview.measure", "file", filepath.Base(path), "error", err)
		size = int64(len(out.Data))
	}
	return cache.PreviewEntry{
		Data:        out.Data,
		Width:       out.Width,
		Height:      out.Height,
		Format:      out.Format,
		EncodedSize: size,
	}, nil
}

// PurgePreviews drops every cached preview. Call it when a new set of
// source images is loaded.
func (e *Engine) PurgePreviews() { e.previews.Purge() }
