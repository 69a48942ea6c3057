package resize_test

import (
	"context"
	"image"
	"testing"

	"github.com/Skryldev/imagebatch/adapters/resize"
	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

func TestDraw_Resize(t *testing.T) {
	for _, name := range resize.Names() {
		t.Run(name, func(t *testing.T) {
			d, err := resize.New(name)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			src := &core.ImageData{Image: image.NewRGBA(image.Rect(0, 0, 400, 300))}
			out, err := d.Resize(context.Background(), src, 200, 150)
			if err != nil {
				t.Fatalf("Resize: %v", err)
			}
			b := out.Image.(image.Image).Bounds()
			if b.Dx() != 200 || b.Dy() != 150 {
				t.Errorf("bounds: got %v, want 200x150", b)
			}
			if out.Meta.Width != 200 || out.Meta.Height != 150 {
				t.Errorf("meta: got %dx%d", out.Meta.Width, out.Meta.Height)
			}
		})
	}
}

func TestDraw_SameSizeIsNoop(t *testing.T) {
	d, _ := resize.New("")
	src := &core.ImageData{Image: image.NewRGBA(image.Rect(0, 0, 10, 10))}
	out, err := d.Resize(context.Background(), src, 10, 10)
	if err != nil || out != src {
		t.Errorf("got %p, %v; want the input back", out, err)
	}
}

func TestNew_UnknownResampler(t *testing.T) {
	if _, err := resize.New("lanczos9"); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}
