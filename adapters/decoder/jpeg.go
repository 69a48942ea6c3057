// Package decoder provides format-specific image decoders.
package decoder

import (
	"context"
	"image"
	"image/jpeg"
	"io"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// JPEG decodes JPEG images using the standard library.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool {
	return format == core.FormatJPEG
}

func (j *JPEG) Decode(ctx context.Context, r io.Reader) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "jpeg.decode", err)
	}

	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, "jpeg.decode", err)
	}
	return wrapImage(img, core.FormatJPEG, "jpeg"), nil
}

// wrapImage builds the pipeline representation of a decoded image.
func wrapImage(img image.Image, f core.Format, source string) *core.ImageData {
	bounds := img.Bounds()
	return &core.ImageData{
		Image:  img,
		Format: f,
		Meta: core.Metadata{
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			Format:     f,
			Source:     source,
			ColorSpace: colorSpace(img),
			HasAlpha:   hasAlpha(img),
		},
	}
}

// colorSpace returns the colour space of an image.Image.
func colorSpace(img image.Image) core.ColorSpace {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return core.ColorSpaceGray
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return core.ColorSpaceRGBA
	case *image.CMYK:
		return core.ColorSpaceCMYK
	}
	return core.ColorSpaceRGB
}

// hasAlpha reports whether img has at least one non-opaque pixel. Types
// without an Opaque method are assumed to carry alpha.
func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
