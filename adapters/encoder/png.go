package encoder

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// PNG encodes images to PNG with a pHYs density chunk. PNG is lossless, so
// EncodeOptions.Quality is ignored.
type PNG struct {
	Compression png.CompressionLevel
}

func NewPNG() *PNG { return &PNG{Compression: png.DefaultCompression} }

func (p *PNG) CanEncode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) Available() bool { return true }

func (p *PNG) Encode(ctx context.Context, img *core.ImageData, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "png.encode", err)
	}

	src, ok := img.Image.(image.Image)
	if !ok || src == nil {
		return nil, apperrors.New(apperrors.KindEncodeFailure, "png.encode", apperrors.ErrEmptyInput)
	}

	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: p.Compression}
	if err := enc.Encode(&buf, src); err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "png.encode", err)
	}

	out, err := utils.SetPNGDensity(buf.Bytes(), opts.DPI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "png.density", err)
	}
	return out, nil
}
