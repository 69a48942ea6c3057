// Package resize scales decoded images with golang.org/x/image/draw.
package resize

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// DefaultInterpolator is used when no resampler name is configured.
const DefaultInterpolator = "catmull-rom"

var interpolators = map[string]xdraw.Interpolator{
	"nearest":         xdraw.NearestNeighbor,
	"approx-bilinear": xdraw.ApproxBiLinear,
	"bilinear":        xdraw.BiLinear,
	"catmull-rom":     xdraw.CatmullRom,
}

// Names returns the accepted interpolator names, sorted.
func Names() []string {
	out := make([]string, 0, len(interpolators))
	for k := range interpolators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Draw resizes image.Image values into a fresh RGBA buffer.
type Draw struct {
	Interpolator xdraw.Interpolator
}

var _ core.Resizer = (*Draw)(nil)

// New returns a Draw resizer for the named interpolator. An empty name
// selects DefaultInterpolator.
func New(name string) (*Draw, error) {
	if name == "" {
		name = DefaultInterpolator
	}
	ip, ok := interpolators[strings.ToLower(name)]
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, "resize.new",
			fmt.Errorf("unknown resampler %q (want one of %s)", name, strings.Join(Names(), ", ")))
	}
	return &Draw{Interpolator: ip}, nil
}

func (d *Draw) Resize(ctx context.Context, img *core.ImageData, width, height int) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "resize", err)
	}

	src, ok := img.Image.(image.Image)
	if !ok || src == nil {
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, "resize", apperrors.ErrEmptyInput)
	}
	if width <= 0 || height <= 0 {
		return nil, apperrors.New(apperrors.KindCorruptedImageFile, "resize", apperrors.ErrZeroDimensions)
	}

	srcB := src.Bounds()
	if srcB.Dx() == width && srcB.Dy() == height {
		return img, nil // nothing to do
	}

	ip := d.Interpolator
	if ip == nil {
		ip = xdraw.CatmullRom
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	ip.Scale(dst, dst.Bounds(), src, srcB, xdraw.Over, nil)

	out := *img
	out.Image = dst
	out.Meta.Width = width
	out.Meta.Height = height
	return &out, nil
}
