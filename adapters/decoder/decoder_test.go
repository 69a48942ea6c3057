package decoder_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/Skryldev/imagebatch/adapters/decoder"
	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

func newNRGBA(w, h int, a uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 30, G: 60, B: 90, A: a})
		}
	}
	return img
}

func TestJPEG_Decode(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newNRGBA(40, 30, 255), nil); err != nil {
		t.Fatal(err)
	}
	img, err := decoder.NewJPEG().Decode(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Meta.Width != 40 || img.Meta.Height != 30 {
		t.Errorf("dims: got %dx%d, want 40x30", img.Meta.Width, img.Meta.Height)
	}
	if img.Meta.HasAlpha {
		t.Error("jpeg reported alpha")
	}
	if img.Format != core.FormatJPEG {
		t.Errorf("format: got %q", img.Format)
	}
}

func TestPNG_DecodeAlpha(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, newNRGBA(8, 8, 128)); err != nil {
		t.Fatal(err)
	}
	img, err := decoder.NewPNG().Decode(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !img.Meta.HasAlpha {
		t.Error("translucent png reported no alpha")
	}
}

func TestDecode_GarbageIsLoadFailure(t *testing.T) {
	_, err := decoder.NewJPEG().Decode(context.Background(), bytes.NewReader([]byte("not an image")))
	if !apperrors.IsKind(err, apperrors.KindFailedToLoadImage) {
		t.Errorf("got %v, want failed-to-load", err)
	}
}

func TestGeneric_DecodesGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 12, 7), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	img, err := decoder.NewGeneric().Decode(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Meta.Source != "gif" || img.Meta.Width != 12 || img.Meta.Height != 7 {
		t.Errorf("got %+v", img.Meta)
	}
	if img.Format != "" {
		t.Errorf("gif must not map to an output format, got %q", img.Format)
	}
}

func TestDecode_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := decoder.NewPNG().Decode(ctx, bytes.NewReader(nil))
	if !apperrors.IsKind(err, apperrors.KindCanceled) {
		t.Errorf("got %v, want canceled", err)
	}
}
