//go:build cgo

package encoder

import (
	"bytes"
	"context"
	"image"

	"github.com/chai2010/webp"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// WebP encodes images through libwebp (github.com/chai2010/webp). The
// container carries no density metadata, so EncodeOptions.DPI is ignored.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanEncode(format core.Format) bool { return format == core.FormatWebP }

func (w *WebP) Available() bool { return true }

func (w *WebP) Encode(ctx context.Context, img *core.ImageData, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "webp.encode", err)
	}

	src, ok := img.Image.(image.Image)
	if !ok || src == nil {
		return nil, apperrors.New(apperrors.KindEncodeFailure, "webp.encode", apperrors.ErrEmptyInput)
	}

	var buf bytes.Buffer
	o := &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality * 100)}
	if err := webp.Encode(&buf, src, o); err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "webp.encode", err)
	}
	return buf.Bytes(), nil
}
