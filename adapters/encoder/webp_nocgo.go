//go:build !cgo

package encoder

import (
	"context"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// WebP is unavailable without cgo; libwebp cannot be linked.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanEncode(format core.Format) bool { return format == core.FormatWebP }

func (w *WebP) Available() bool { return false }

func (w *WebP) Encode(context.Context, *core.ImageData, core.EncodeOptions) ([]byte, error) {
	return nil, apperrors.New(apperrors.KindUnsupportedOutputFormat, "webp.encode", apperrors.ErrNoEncoder)
}
