// Package encoder provides the pure-Go output encoders.
package encoder

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// JPEG encodes images to baseline JPEG with a JFIF density header.
type JPEG struct{}

func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanEncode(format core.Format) bool { return format == core.FormatJPEG }

func (j *JPEG) Available() bool { return true }

func (j *JPEG) Encode(ctx context.Context, img *core.ImageData, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "jpeg.encode", err)
	}

	src, ok := img.Image.(image.Image)
	if !ok || src == nil {
		return nil, apperrors.New(apperrors.KindEncodeFailure, "jpeg.encode", apperrors.ErrEmptyInput)
	}
	if img.Meta.HasAlpha {
		src = flatten(src)
	}

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := jpeg.Encode(buf, src, &jpeg.Options{Quality: JPEGQuality(opts.Quality)}); err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "jpeg.encode", err)
	}

	out, err := utils.SetJFIFDensity(buf.Bytes(), opts.DPI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "jpeg.density", err)
	}
	return out, nil
}

// JPEGQuality maps a 0..1 quality to the 1..100 scale of image/jpeg.
func JPEGQuality(q float64) int {
	v := int(math.Round(q * 100))
	switch {
	case v < 1:
		return 1
	case v > 100:
		return 100
	}
	return v
}

// flatten composites src over white; JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}
