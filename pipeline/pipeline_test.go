package pipeline_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Skryldev/imagebatch/adapters/decoder"
	"github.com/Skryldev/imagebatch/adapters/encoder"
	"github.com/Skryldev/imagebatch/adapters/resize"
	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/hooks"
	"github.com/Skryldev/imagebatch/pipeline"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func newRegistry(t *testing.T) *core.DefaultRegistry {
	t.Helper()
	reg := core.NewRegistry()
	decoder.Register(reg)
	encoder.Register(reg)
	d, err := resize.New("")
	if err != nil {
		t.Fatal(err)
	}
	reg.SetResizer(d)
	return reg
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 50, G: 50, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type unavailableEncoder struct{}

func (unavailableEncoder) CanEncode(f core.Format) bool { return f == core.FormatWebP }
func (unavailableEncoder) Available() bool              { return false }
func (unavailableEncoder) Encode(context.Context, *core.ImageData, core.EncodeOptions) ([]byte, error) {
	panic("must not be called")
}

type emptyEncoder struct{}

func (emptyEncoder) CanEncode(core.Format) bool { return true }
func (emptyEncoder) Available() bool            { return true }
func (emptyEncoder) Encode(context.Context, *core.ImageData, core.EncodeOptions) ([]byte, error) {
	return nil, nil
}

// zeroAreaDecoder reports an image with no width.
type zeroAreaDecoder struct{}

func (zeroAreaDecoder) CanDecode(f core.Format) bool { return f == core.FormatPNG }
func (zeroAreaDecoder) Decode(context.Context, io.Reader) (*core.ImageData, error) {
	return &core.ImageData{Meta: core.Metadata{Width: 0, Height: 10}}, nil
}

// countingEncoder counts Encode calls and delegates to a real encoder.
type countingEncoder struct {
	core.Encoder
	calls *int32
}

func (c countingEncoder) Encode(ctx context.Context, img *core.ImageData, opts core.EncodeOptions) ([]byte, error) {
	atomic.AddInt32(c.calls, 1)
	return c.Encoder.Encode(ctx, img, opts)
}

func run(t *testing.T, reg core.Registry, path string, f core.Format, maxW, maxH int) (*core.ImageData, error) {
	t.Helper()
	p := pipeline.New().Use(
		&pipeline.ReadFileStep{Path: path},
		&pipeline.DecodeStep{Registry: reg},
		&pipeline.FitStep{MaxWidth: maxW, MaxHeight: maxH, Resizer: reg.Resizer()},
		&pipeline.EncodeStep{Registry: reg, Format: f, Options: core.EncodeOptions{Quality: 0.8, DPI: 72}},
	)
	out, _, err := p.Run(context.Background(), &core.ImageData{})
	return out, err
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPipeline_PNGToJPEGResized(t *testing.T) {
	reg := newRegistry(t)
	path := writePNG(t, t.TempDir(), "in.png", 800, 600)

	out, err := run(t, reg, path, core.FormatJPEG, 400, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Meta.Width != 400 || out.Meta.Height != 300 {
		t.Errorf("dims: got %dx%d, want 400x300", out.Meta.Width, out.Meta.Height)
	}
	if out.Format != core.FormatJPEG || len(out.Data) == 0 {
		t.Errorf("format %q, %d bytes", out.Format, len(out.Data))
	}
	if out.Name != "in.png" || out.OriginalSize == 0 {
		t.Errorf("provenance lost: name %q size %d", out.Name, out.OriginalSize)
	}
}

func TestPipeline_ErrorKinds(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", 20, 10)
	garbage := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("definitely not pixels"), 0o644); err != nil {
		t.Fatal(err)
	}

	noWebP := newRegistry(t)
	noWebP.RegisterEncoder(core.FormatWebP, unavailableEncoder{})
	empty := newRegistry(t)
	empty.RegisterEncoder(core.FormatPNG, emptyEncoder{})

	var encodes int32
	zeroArea := newRegistry(t)
	zeroArea.RegisterDecoder(core.FormatPNG, zeroAreaDecoder{})
	jpegEnc, _ := zeroArea.EncoderFor(core.FormatJPEG)
	zeroArea.RegisterEncoder(core.FormatJPEG, countingEncoder{Encoder: jpegEnc, calls: &encodes})

	cases := []struct {
		name string
		reg  core.Registry
		path string
		f    core.Format
		want apperrors.Kind
	}{
		{"missing input", newRegistry(t), filepath.Join(dir, "nope.png"), core.FormatJPEG, apperrors.KindInputNotFound},
		{"directory input", newRegistry(t), dir, core.FormatJPEG, apperrors.KindInputNotFound},
		{"undecodable", newRegistry(t), garbage, core.FormatJPEG, apperrors.KindFailedToLoadImage},
		{"unavailable encoder", noWebP, good, core.FormatWebP, apperrors.KindUnsupportedOutputFormat},
		{"empty output", empty, good, core.FormatPNG, apperrors.KindEncodeFailure},
		{"zero area", zeroArea, good, core.FormatJPEG, apperrors.KindCorruptedImageFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.reg, tc.path, tc.f, 0, 0)
			if got := apperrors.KindOf(err); got != tc.want {
				t.Errorf("kind: got %q (%v), want %q", got, err, tc.want)
			}
		})
	}
	if n := atomic.LoadInt32(&encodes); n != 0 {
		t.Errorf("encoder called %d times for a zero-area image", n)
	}
}

func TestPipeline_CanceledBeforeStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := pipeline.New().Use(&pipeline.ReadFileStep{Path: "whatever"})
	_, _, err := p.Run(ctx, &core.ImageData{})
	if !apperrors.IsKind(err, apperrors.KindCanceled) {
		t.Errorf("got %v, want canceled", err)
	}
}

func TestPipeline_HooksObserveEveryStep(t *testing.T) {
	reg := newRegistry(t)
	path := writePNG(t, t.TempDir(), "in.png", 30, 30)
	m := hooks.NewInMemoryMetrics()

	p := pipeline.New().
		Use(
			&pipeline.ReadFileStep{Path: path},
			&pipeline.DecodeStep{Registry: reg},
			&pipeline.EncodeStep{Registry: reg, Format: core.FormatPNG, Options: core.EncodeOptions{DPI: 72}},
		).
		AddHook(hooks.NewMetricsHook(m), hooks.NewLoggingHook(hooks.NopLogger{}))

	_, timings, err := p.Run(context.Background(), &core.ImageData{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(timings) != 3 {
		t.Errorf("timings: got %d entries, want 3", len(timings))
	}
	snap := m.Snapshot()
	for _, step := range []string{"read", "decode", "encode"} {
		if snap.StepCalls[step] != 1 {
			t.Errorf("step %q: %d calls", step, snap.StepCalls[step])
		}
	}
	if snap.TotalThroughputB == 0 {
		t.Error("encode throughput not recorded")
	}
}
