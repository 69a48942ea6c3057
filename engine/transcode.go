package engine

import (
	"context"
	"sync"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/pipeline"
)

// Output is the encoded result of one transcode.
type Output struct {
	Data         []byte
	Width        int
	Height       int
	Format       core.Format
	OriginalSize int64
}

// Transcoder decodes, fits and encodes one file. It writes nothing.
type Transcoder struct {
	registry core.Registry

	mu    sync.RWMutex
	hooks []core.Hook
}

// NewTranscoder returns a Transcoder using reg's codecs and resizer.
func NewTranscoder(reg core.Registry) *Transcoder {
	return &Transcoder{registry: reg}
}

// AddHook registers an observer for every step of every transcode.
func (t *Transcoder) AddHook(h core.Hook) {
	t.mu.Lock()
	t.hooks = append(t.hooks, h)
	t.mu.Unlock()
}

// Transcode runs read → decode → fit → encode on path with params.
func (t *Transcoder) Transcode(ctx context.Context, path string, params core.Parameters) (Output, error) {
	if err := params.Validate(); err != nil {
		return Output{}, err
	}

	t.mu.RLock()
	hooks := append([]core.Hook(nil), t.hooks...)
	t.mu.RUnlock()

	p := pipeline.New().
		Use(
			&pipeline.ReadFileStep{Path: path},
			&pipeline.DecodeStep{Registry: t.registry},
			&pipeline.FitStep{MaxWidth: params.MaxWidth, MaxHeight: params.MaxHeight, Resizer: t.registry.Resizer()},
			&pipeline.EncodeStep{
				Registry: t.registry,
				Format:   params.Format,
				Options:  core.EncodeOptions{Quality: params.Quality, DPI: params.DPI()},
			},
		).
		AddHook(hooks...)

	img, _, err := p.Run(ctx, &core.ImageData{})
	if err != nil {
		return Output{}, apperrors.Wrap(apperrors.KindEncodeFailure, "transcode", err)
	}
	return Output{
		Data:         img.Data,
		Width:        img.Meta.Width,
		Height:       img.Meta.Height,
		Format:       img.Format,
		OriginalSize: img.OriginalSize,
	}, nil
}
