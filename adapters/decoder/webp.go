package decoder

import (
	"context"
	"io"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"golang.org/x/image/webp"
)

// WebP decodes WebP images using golang.org/x/image/webp, which handles
// lossy and lossless still images but not animations.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanDecode(format core.Format) bool {
	return format == core.FormatWebP
}

func (w *WebP) Decode(ctx context.Context, r io.Reader) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "webp.decode", err)
	}
	img, err := webp.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, "webp.decode", err)
	}
	return wrapImage(img, core.FormatWebP, "webp"), nil
}
