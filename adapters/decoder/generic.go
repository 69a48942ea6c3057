package decoder

import (
	"context"
	"image"
	_ "image/gif" // register GIF
	"io"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// Generic decodes any format registered with the image package. It is the
// registry's fallback for inputs that are readable but cannot be written
// back in their own format (TIFF, BMP, GIF).
type Generic struct{}

func NewGeneric() *Generic { return &Generic{} }

// CanDecode always reports true; the sniffed bytes decide at Decode time.
func (g *Generic) CanDecode(core.Format) bool { return true }

func (g *Generic) Decode(ctx context.Context, r io.Reader) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "generic.decode", err)
	}
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, "generic.decode", err)
	}
	f, _ := core.FormatFromSniff(name)
	return wrapImage(img, f, name), nil
}

// Register installs the pure-Go decoders into reg.
func Register(reg *core.DefaultRegistry) {
	reg.RegisterDecoder(core.FormatJPEG, NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, NewPNG())
	reg.RegisterDecoder(core.FormatWebP, NewWebP())
	reg.SetFallbackDecoder(NewGeneric())
}

var (
	_ core.Decoder = (*JPEG)(nil)
	_ core.Decoder = (*PNG)(nil)
	_ core.Decoder = (*WebP)(nil)
	_ core.Decoder = (*Generic)(nil)
)
